package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow_backend/platform/logger"
)

func TestCheckEmptyPhoneReturnsDefault(t *testing.T) {
	client := New("https://graph.example.com", "key", "biz-1", 5*time.Second, nil, logger.New("test"))

	status, err := client.Check(context.Background(), "", "Acme")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.HasBusinessAccount || status.IsVerified || status.APIEnabled {
		t.Errorf("empty phone must yield all-false status, got %+v", status)
	}
	if status.PhoneNumber != "" {
		t.Errorf("PhoneNumber = %q, want empty", status.PhoneNumber)
	}
}

func TestCheckInvalidPhoneReturnsDefault(t *testing.T) {
	client := New("https://graph.example.com", "key", "biz-1", 5*time.Second, nil, logger.New("test"))

	status, err := client.Check(context.Background(), "not a number", "Acme")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.HasBusinessAccount || status.PhoneNumber != "" {
		t.Errorf("invalid phone must yield all-false status, got %+v", status)
	}
}

func TestCheckWithoutAPIKeepsNormalizedPhone(t *testing.T) {
	client := New("", "", "", 5*time.Second, nil, logger.New("test"))

	status, err := client.Check(context.Background(), "(212) 555-0100", "Acme")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.PhoneNumber != "+12125550100" {
		t.Errorf("PhoneNumber = %q, want +12125550100", status.PhoneNumber)
	}
	if status.HasBusinessAccount {
		t.Error("HasBusinessAccount must be false without an API")
	}
}

func TestCheckVerifiedBusinessAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/biz-1/phone_numbers" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["phone_number"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{
			"verified_name": "Acme Support",
			"code_verification_status": "VERIFIED",
			"quality_rating": "GREEN"
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key", "biz-1", 5*time.Second, nil, logger.New("test"))

	status, err := client.Check(context.Background(), "+12125550100", "Acme")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !status.HasBusinessAccount {
		t.Error("HasBusinessAccount = false, want true")
	}
	if !status.IsVerified {
		t.Error("IsVerified = false, want true")
	}
	if !status.APIEnabled {
		t.Error("APIEnabled = false, want true")
	}
	if status.BusinessName != "Acme Support" {
		t.Errorf("BusinessName = %q, want Acme Support", status.BusinessName)
	}
}

func TestCheckUnknownNumberIsNegative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "key", "biz-1", 5*time.Second, nil, logger.New("test"))

	status, err := client.Check(context.Background(), "+12125550100", "Acme")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.HasBusinessAccount || status.IsVerified || status.APIEnabled {
		t.Errorf("404 must yield all-false status, got %+v", status)
	}
	if status.PhoneNumber != "+12125550100" {
		t.Errorf("PhoneNumber = %q", status.PhoneNumber)
	}
}

func TestCheckRemoteErrorIsNegativeNotPropagated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "key", "biz-1", 5*time.Second, nil, logger.New("test"))

	status, err := client.Check(context.Background(), "+12125550100", "Acme")
	if err != nil {
		t.Fatalf("Check must not propagate remote failure, got %v", err)
	}
	if status.HasBusinessAccount {
		t.Error("HasBusinessAccount must be false on remote failure")
	}
}
