package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
)

const SignatureHeader = "x-paystack-signature"

// ErrGateway is returned when the gateway answers with status=false.
type ErrGateway struct {
	Message string
}

func (e *ErrGateway) Error() string { return "paystack: " + e.Message }

// ErrTransport wraps network-level failures; callers may treat them as transient.
type ErrTransport struct {
	Err error
}

func (e *ErrTransport) Error() string { return "paystack transport: " + e.Err.Error() }
func (e *ErrTransport) Unwrap() error { return e.Err }

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`
}

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	backoff time.Duration
}

func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
		backoff: 300 * time.Millisecond,
	}
}

// Initialize starts a transaction. Network failures are retried once;
// gateway rejections are not.
func (c *Client) Initialize(ctx context.Context, email string, amount int64) (*InitializeData, error) {
	body, err := json.Marshal(map[string]any{"email": email, "amount": amount})
	if err != nil {
		return nil, err
	}

	var out *InitializeData
	b := retry.WithMaxRetries(1, retry.NewConstant(c.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		res, err := c.post(ctx, "/transaction/initialize", body)
		if err != nil {
			return retry.RetryableError(&ErrTransport{Err: err})
		}
		defer res.Body.Close()

		if res.StatusCode >= 500 {
			return retry.RetryableError(&ErrTransport{Err: fmt.Errorf("status %d", res.StatusCode)})
		}

		var resp initializeResponse
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			return &ErrTransport{Err: errors.Wrap(err, "decode initialize response")}
		}
		if !resp.Status {
			msg := resp.Message
			if msg == "" {
				msg = fmt.Sprintf("initialize rejected with status %d", res.StatusCode)
			}
			return &ErrGateway{Message: msg}
		}
		if resp.Data.Reference == "" || resp.Data.AuthorizationURL == "" {
			return &ErrGateway{Message: "initialize response missing reference"}
		}
		out = &resp.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)
	return c.http.Do(req)
}

// Sign returns the hex HMAC-SHA512 of body under secret, as the gateway computes it.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body under secret.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
