// Package testdb provides a no-op database/sql driver. Services that own
// their transactions can run against it in unit tests: BeginTx, Commit and
// Rollback all succeed while every query is expected to go through the
// mocked repositories instead.
package testdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// New returns an open *sql.DB backed by the no-op driver.
func New() *sql.DB {
	return sql.OpenDB(connector{})
}

type connector struct{}

func (connector) Connect(context.Context) (driver.Conn, error) { return conn{}, nil }
func (connector) Driver() driver.Driver                        { return drv{} }

type drv struct{}

func (drv) Open(string) (driver.Conn, error) { return conn{}, nil }

type conn struct{}

func (conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("testdb: statements are not supported, mock the repository")
}
func (conn) Close() error              { return nil }
func (conn) Begin() (driver.Tx, error) { return tx{}, nil }

type tx struct{}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }
