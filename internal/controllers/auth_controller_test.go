package controllers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupTestApp(t)

	// Register.
	w := doRequest(r, http.MethodPost, "/api/auth/register", "",
		`{"email": "p@example.com", "password": "hunter22", "full_name": "Pat Passenger", "phone_number": "+911234567890"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate email conflicts.
	w = doRequest(r, http.MethodPost, "/api/auth/register", "",
		`{"email": "p@example.com", "password": "other"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate email: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Missing password is a validation failure.
	w = doRequest(r, http.MethodPost, "/api/auth/register", "", `{"email": "q@example.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", w.Code)
	}

	// Wrong password.
	w = doRequest(r, http.MethodPost, "/api/auth/login", "",
		`{"email": "p@example.com", "password": "wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", w.Code)
	}

	// Login and use the issued token on /me.
	w = doRequest(r, http.MethodPost, "/api/auth/login", "",
		`{"email": "p@example.com", "password": "hunter22"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil || loginResp.Token == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/api/auth/me", loginResp.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("/me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Pat Passenger") {
		t.Errorf("/me missing profile data: %s", w.Body.String())
	}
}
