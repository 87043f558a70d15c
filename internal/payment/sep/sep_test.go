package sep

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(verifyURL string) *Config {
	return &Config{
		GatewayURL:  "https://gateway.example/pay",
		VerifyURL:   verifyURL,
		CallbackURL: "https://shop.example/api/v1/payments/callback",
		Timeout:     2 * time.Second,
		MaxRetries:  3,
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for nil config, got %v", err)
	}
	cfg := testConfig("https://verify.example")
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	for _, clear := range []func(*Config){
		func(c *Config) { c.GatewayURL = "" },
		func(c *Config) { c.VerifyURL = " " },
		func(c *Config) { c.CallbackURL = "" },
	} {
		broken := *cfg
		clear(&broken)
		if err := ValidateConfig(&broken); !errors.Is(err, ErrConfigInvalid) {
			t.Fatalf("expected ErrConfigInvalid, got %v", err)
		}
	}
}

func TestGenerateTokenIsUnique(t *testing.T) {
	first := GenerateToken(42, "130000")
	second := GenerateToken(42, "130000")
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if first == second {
		t.Fatalf("expected distinct tokens for repeated initiation")
	}
}

func TestPaymentURL(t *testing.T) {
	cfg := testConfig("https://verify.example")
	raw, err := PaymentURL(cfg, "tok123", "130000")
	if err != nil {
		t.Fatalf("PaymentURL failed: %v", err)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse payment URL failed: %v", err)
	}
	query := parsed.Query()
	if query.Get("token") != "tok123" {
		t.Fatalf("expected token param, got %q", query.Get("token"))
	}
	if query.Get("amount") != "130000" {
		t.Fatalf("expected amount param, got %q", query.Get("amount"))
	}
	if query.Get("redirect_url") != cfg.CallbackURL {
		t.Fatalf("expected redirect_url param, got %q", query.Get("redirect_url"))
	}
}

func TestVerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form failed: %v", err)
		}
		if r.PostFormValue("token") != "tok123" {
			t.Errorf("expected token field, got %q", r.PostFormValue("token"))
		}
		if r.PostFormValue("ref_id") != "REF-1" {
			t.Errorf("expected ref_id field, got %q", r.PostFormValue("ref_id"))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"state":  "ok",
			"ref_id": "REF-1",
			"amount": "130000",
		})
	}))
	defer server.Close()

	result, err := Verify(context.Background(), testConfig(server.URL), "tok123", "REF-1")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Succeed {
		t.Fatalf("expected succeed")
	}
	if result.RefID != "REF-1" || result.Amount != "130000" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestVerifyRetriesTransportErrors(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"state": "ok", "ref_id": "REF-2"})
	}))
	defer server.Close()

	result, err := Verify(context.Background(), testConfig(server.URL), "tok", "REF-2")
	if err != nil {
		t.Fatalf("Verify failed after retries: %v", err)
	}
	if !result.Succeed {
		t.Fatalf("expected succeed after retries")
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestVerifyDoesNotRetryRejection(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"state": "canceled"})
	}))
	defer server.Close()

	_, err := Verify(context.Background(), testConfig(server.URL), "tok", "REF-3")
	if !errors.Is(err, ErrVerifyRejected) {
		t.Fatalf("expected ErrVerifyRejected, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", hits.Load())
	}
}

func TestVerifyExhaustsRetries(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := Verify(context.Background(), testConfig(server.URL), "tok", "REF-4")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestVerifyInvalidResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := Verify(context.Background(), testConfig(server.URL), "tok", "REF-5")
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}
