package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/heetvora/chronomart-backend/pkg/config"
	apperrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	"github.com/heetvora/chronomart-backend/pkg/money"
)

// SessionRequest carries everything needed to open a hosted payment session.
type SessionRequest struct {
	OrderID       string
	AmountCents   int64
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
}

// SessionResponse is the provider reply persisted into the order audit trail.
type SessionResponse struct {
	SessionID  string          `json:"payment_session_id"`
	OrderToken string          `json:"order_token"`
	Raw        json.RawMessage `json:"-"`
}

type sessionPayload struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     string          `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
}

// Client talks to the hosted payment provider. Retries cover transport
// failures and 5xx only; a 4xx is a terminal answer and is never replayed.
type Client struct {
	cfg  config.GatewayConfig
	http *retryablehttp.Client
	logg *logger.Logger
}

func NewClient(cfg config.GatewayConfig, logg *logger.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient.Timeout = cfg.RequestTimeout
	rc.Logger = nil
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp != nil && resp.StatusCode >= http.StatusInternalServerError {
			return true, nil
		}
		return false, nil
	}
	return &Client{cfg: cfg, http: rc, logg: logg}
}

// CreateSession opens a payment session for the order. The amount travels as
// a fixed two-decimal string; phone is reduced to digits before sending.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	if c.cfg.BaseURL == "" {
		return nil, apperrors.New(apperrors.CodeDependency, "gateway base url not configured")
	}

	payload := sessionPayload{
		OrderID:       req.OrderID,
		OrderAmount:   money.FormatAmount(req.AmountCents),
		OrderCurrency: req.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    req.CustomerID,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: DigitsOnly(req.CustomerPhone),
		},
		OrderMeta: orderMeta{ReturnURL: c.cfg.ReturnURL},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "marshal session payload")
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "build session request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.cfg.AppID)
	httpReq.Header.Set("x-client-secret", c.cfg.Secret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeGateway, err, "gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeGateway, err, "read gateway response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.New(apperrors.CodeGateway, fmt.Sprintf("gateway returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode, "body": string(raw)})
	}

	var session SessionResponse
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeGateway, err, "decode gateway response")
	}
	session.Raw = json.RawMessage(raw)
	return &session, nil
}

// SignCallback computes the callback signature over the canonical field order.
func SignCallback(secret, orderID, orderAmount, referenceID, txStatus string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + orderAmount + referenceID + txStatus))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallback checks the provider signature in constant time.
func VerifyCallback(secret, orderID, orderAmount, referenceID, txStatus, signature string) bool {
	expected := SignCallback(secret, orderID, orderAmount, referenceID, txStatus)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// DigitsOnly strips everything but ASCII digits from a phone number.
func DigitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RequestTimeout exposes the configured per-attempt timeout.
func (c *Client) RequestTimeout() time.Duration {
	return c.cfg.RequestTimeout
}
