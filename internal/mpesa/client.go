package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client talks to the Daraja STK push API. Bearer tokens from the
// client-credentials exchange are cached until shortly before expiry so
// back-to-back pushes do not double the auth round-trips.
type Client struct {
	baseURL        string
	shortcode      string
	passkey        string
	consumerKey    string
	consumerSecret string
	callbackURL    string
	httpClient     *http.Client
	log            *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

func NewClient(baseURL, shortcode, passkey, consumerKey, consumerSecret, callbackURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		shortcode:      shortcode,
		passkey:        passkey,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		callbackURL:    callbackURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	url := fmt.Sprintf("%s/oauth/v1/generate?grant_type=client_credentials", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GatewayError{Op: "auth", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &GatewayError{Op: "auth", Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &GatewayError{Op: "auth", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &GatewayError{Op: "auth", Err: fmt.Errorf("empty access token")}
	}

	// expires_in arrives as a string of seconds, typically "3599".
	ttl := 3300 * time.Second
	if secs, err := time.ParseDuration(tok.ExpiresIn + "s"); err == nil && secs > time.Minute {
		ttl = secs - 30*time.Second
	}
	c.token = tok.AccessToken
	c.tokenExpiry = c.now().Add(ttl)

	return c.token, nil
}

// password derives the request password the way the provider defines it: a
// base64 encoding of shortcode+passkey+timestamp. An encoding, not a
// signature.
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.shortcode + c.passkey + timestamp))
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// InitiateSTKPush sends a customer-prompt payment request. The provider
// response is returned unmodified; failures surface to the caller with no
// retry.
func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount float64, reference, description string) (*STKPushResponse, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format("20060102150405")
	payload := stkPushRequest{
		BusinessShortCode: c.shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            fmt.Sprintf("%.0f", amount),
		PartyA:            NormalizePhone(phone),
		PartyB:            c.shortcode,
		PhoneNumber:       NormalizePhone(phone),
		CallBackURL:       c.callbackURL,
		AccountReference:  reference,
		TransactionDesc:   description,
	}

	var result STKPushResponse
	if err := c.post(ctx, token, "/mpesa/stkpush/v1/processrequest", payload, &result); err != nil {
		return nil, err
	}

	c.log.Info("stk push initiated",
		zap.String("checkout_request_id", result.CheckoutRequestID),
		zap.String("response_code", result.ResponseCode),
	)
	return &result, nil
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type STKQueryResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// QuerySTKPush polls the status of an earlier push by its checkout request id.
func (c *Client) QuerySTKPush(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format("20060102150405")
	payload := stkQueryRequest{
		BusinessShortCode: c.shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var result STKQueryResponse
	if err := c.post(ctx, token, "/mpesa/stkpushquery/v1/query", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, token, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &GatewayError{Op: path, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Op: path, Err: err}
	}
	return nil
}

// GatewayError marks a failure to reach or be understood by the payment
// provider.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("mpesa %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
