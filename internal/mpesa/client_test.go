package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPasswordEncoding(t *testing.T) {
	c := NewClient("http://x", "174379", "passkey", "k", "s", "http://cb", zap.NewNop())

	got := c.password("20240101120000")
	want := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20240101120000"))
	if got != want {
		t.Errorf("password() = %q, want %q", got, want)
	}
}

func TestAuthTokenCaching(t *testing.T) {
	var authCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			authCalls++
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "tok-1",
				"expires_in":   "3599",
			})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "174379", "pk", "k", "s", "http://cb", zap.NewNop())

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tok, err := c.authToken(ctx)
		if err != nil {
			t.Fatalf("authToken error: %v", err)
		}
		if tok != "tok-1" {
			t.Fatalf("token = %q", tok)
		}
	}
	if authCalls != 1 {
		t.Errorf("expected 1 auth round-trip for cached token, got %d", authCalls)
	}

	// Past expiry the token is refreshed
	now = now.Add(2 * time.Hour)
	if _, err := c.authToken(ctx); err != nil {
		t.Fatalf("authToken after expiry: %v", err)
	}
	if authCalls != 2 {
		t.Errorf("expected refresh after expiry, got %d auth calls", authCalls)
	}
}

func TestInitiateSTKPush(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			var req stkPushRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.PhoneNumber != "254712345678" {
				t.Errorf("phone not normalized: %q", req.PhoneNumber)
			}
			if req.Amount != "1000" {
				t.Errorf("amount = %q, want 1000", req.Amount)
			}
			_ = json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID: "m-1",
				CheckoutRequestID: "ws_CO_1",
				ResponseCode:      "0",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "174379", "pk", "k", "s", "http://cb", zap.NewNop())

	resp, err := c.InitiateSTKPush(context.Background(), "0712345678", 1000, "JOB-1", "escrow funding")
	if err != nil {
		t.Fatalf("InitiateSTKPush error: %v", err)
	}
	if resp.CheckoutRequestID != "ws_CO_1" {
		t.Errorf("CheckoutRequestID = %q", resp.CheckoutRequestID)
	}
}

func TestGatewayErrorOnProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "expires_in": "3599"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "174379", "pk", "k", "s", "http://cb", zap.NewNop())

	_, err := c.InitiateSTKPush(context.Background(), "0712345678", 100, "ref", "desc")
	if err == nil {
		t.Fatal("expected error")
	}
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Errorf("expected *GatewayError, got %T", err)
	}
}
