package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	user      *domain.User
	signUpErr error
	token     string
	loginErr  error
	getErr    error
}

func (f *fakeAuthService) SignUp(_ context.Context, email, password, name string) (*domain.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.user, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuthService) GetProfile(_ context.Context, userID string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func TestAuthController_SignUp(t *testing.T) {
	validBody := `{"email":"alice@example.com","password":"supersecret","password_confirm":"supersecret","name":"Alice"}`

	tests := []struct {
		name       string
		body       string
		svc        *fakeAuthService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       validBody,
			svc:        &fakeAuthService{user: &domain.User{ID: testUserID, Email: "alice@example.com", Name: "Alice"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "password fields do not match",
			body:       `{"email":"alice@example.com","password":"supersecret","password_confirm":"different","name":"Alice"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "short password",
			body:       `{"email":"alice@example.com","password":"short","password_confirm":"short"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "bad email",
			body:       `{"email":"nope","password":"supersecret","password_confirm":"supersecret"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "duplicate email",
			body:       validBody,
			svc:        &fakeAuthService{signUpErr: domain.ErrDuplicateEmail},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "unexpected failure",
			body:       validBody,
			svc:        &fakeAuthService{signUpErr: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				data := envelope.Data.(map[string]any)
				assert.Equal(t, "alice@example.com", data["email"])
				assert.NotContains(t, rr.Body.String(), "password", "credentials never leave the backend")
			} else {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeAuthService
		wantStatus int
	}{
		{
			name:       "success returns bearer token",
			body:       `{"email":"alice@example.com","password":"supersecret"}`,
			svc:        &fakeAuthService{token: "jwt-token"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing password",
			body:       `{"email":"alice@example.com"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong credentials",
			body:       `{"email":"alice@example.com","password":"wrong"}`,
			svc:        &fakeAuthService{loginErr: domain.ErrInvalidCredentials},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unexpected failure",
			body:       `{"email":"alice@example.com","password":"supersecret"}`,
			svc:        &fakeAuthService{loginErr: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				envelope := decodeEnvelope(t, rr)
				data := envelope.Data.(map[string]any)
				assert.Equal(t, "jwt-token", data["token"])
				assert.Equal(t, "Bearer", data["token_type"])
			}
		})
	}
}

func TestAuthController_Profile(t *testing.T) {
	t.Run("returns the user", func(t *testing.T) {
		svc := &fakeAuthService{user: &domain.User{ID: testUserID, Email: "alice@example.com", Name: "Alice"}}
		ctrl := NewAuthController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), testUserID))
		rr := httptest.NewRecorder()

		ctrl.Profile(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		envelope := decodeEnvelope(t, rr)
		data := envelope.Data.(map[string]any)
		assert.Equal(t, testUserID, data["id"])
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeAuthService{})

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		rr := httptest.NewRecorder()

		ctrl.Profile(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("user vanished", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeAuthService{getErr: domain.ErrNotFound})

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), testUserID))
		rr := httptest.NewRecorder()

		ctrl.Profile(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}
