package striperepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bogdAAAn1/library-service/util/httpx"
)

var decimalHundred = decimal.NewFromInt(100)

type httpProvider struct {
	apiKey string
	client *http.Client
}

func NewHTTP(apiKey string) Provider {
	return &httpProvider{apiKey: apiKey, client: httpx.Client()}
}

func (p *httpProvider) CreateCheckoutSession(ctx context.Context, req CreateSessionReq) (*Session, error) {
	// Stripe wants minor currency units.
	unitAmount := req.Amount.Mul(decimalHundred).IntPart()

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(unitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductName)

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		"https://api.stripe.com/v1/checkout/sessions",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(p.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe create session failed: %s", resp.Status)
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("stripe: empty session id")
	}

	return &Session{ID: out.ID, URL: out.URL}, nil
}
