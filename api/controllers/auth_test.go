package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/learnloop/learnloop-backend/internal/auth"
	"github.com/learnloop/learnloop-backend/internal/users"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
	"github.com/learnloop/learnloop-backend/pkg/types"
)

type fakeAuthService struct {
	loginResp    *auth.LoginResponse
	loginErr     error
	registerResp *users.UserDTO
	registerErr  error
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerResp, nil
}

func TestAuthLoginReturnsToken(t *testing.T) {
	svc := &fakeAuthService{
		loginResp: &auth.LoginResponse{
			AccessToken: "token123",
			User:        &users.UserDTO{ID: uuid.New(), Email: "member@example.com"},
		},
	}
	handler := AuthLogin(svc, nil)

	body := `{"email":"member@example.com","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["access_token"] != "token123" {
		t.Fatalf("expected access token in payload, got %v", envelope.Data)
	}
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc := &fakeAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	body := `{"email":"member@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLoginValidatesBody(t *testing.T) {
	handler := AuthLogin(&fakeAuthService{}, nil)

	body := `{"email":"not-an-email","password":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := &fakeAuthService{
		registerResp: &users.UserDTO{ID: uuid.New(), Email: "learner@example.com", FullName: "New Learner"},
	}
	handler := AuthRegister(svc, nil)

	body := `{"full_name":"New Learner","email":"learner@example.com","password":"long enough password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	svc := &fakeAuthService{registerErr: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthRegister(svc, nil)

	body := `{"full_name":"Someone","email":"member@example.com","password":"long enough password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
