// service/auth/auth_service_test.go
package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bogdAAAn1/library-service/model"
	userrepo "github.com/bogdAAAn1/library-service/repository/user"
	"github.com/bogdAAAn1/library-service/util/hash"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, errors.New("no user")
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, errors.New("no user")
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	req := model.RegisterReq{
		FirstName: "Taras",
		LastName:  "Shevchenko",
		Email:     "USER@Example.COM",
		Password:  "supersecret",
	}

	u, tok, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, "user", u.Role())
	require.False(t, u.IsStaff, "registration never grants staff")
	require.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	hashed, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hashed, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_UnknownEmail(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("sql: no rows in result set")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "ghost@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
