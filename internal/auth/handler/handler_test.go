package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"authgate/internal/auth/handler/mocks"
	"authgate/internal/auth/models"
	dErrors "authgate/pkg/domain-errors"
)

type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger, nil).Register(r)
	return r, mockService
}

func postJSON(t *testing.T, r chi.Router, path string, body any, modify func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if modify != nil {
		modify(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *AuthHandlerSuite) TestSendCodeOK() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		SendCode(gomock.Any(), &models.SendCodeRequest{Username: "alice123", Email: "a@x.com", Password: "pass1234"}).
		Return(nil)

	rec := postJSON(s.T(), r, "/auth/send-code", map[string]string{
		"username": "alice123", "email": "a@x.com", "password": "pass1234",
	}, nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), map[string]string{"result": "ok"}, decodeBody(s.T(), rec))
}

func (s *AuthHandlerSuite) TestSendCodeConflict() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		SendCode(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeConflict, "user already exists"))

	rec := postJSON(s.T(), r, "/auth/send-code", map[string]string{
		"username": "alice123", "email": "a@x.com", "password": "pass1234",
	}, nil)

	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	body := decodeBody(s.T(), rec)
	assert.Equal(s.T(), "conflict", body["error"])
	assert.Equal(s.T(), "user already exists", body["error_description"])
}

func (s *AuthHandlerSuite) TestSendCodeMalformedBody() {
	r, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodPost, "/auth/send-code", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(s.T(), "bad_request", decodeBody(s.T(), rec)["error"])
}

func (s *AuthHandlerSuite) TestVerifyCodeOK() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		VerifyCode(gomock.Any(), &models.VerifyCodeRequest{Email: "a@x.com", Code: 4321}).
		Return(nil)

	rec := postJSON(s.T(), r, "/auth/verify-code", map[string]any{"email": "a@x.com", "code": 4321}, nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), map[string]string{"result": "ok"}, decodeBody(s.T(), rec))
}

func (s *AuthHandlerSuite) TestVerifyCodeInvalid() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		VerifyCode(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeConflict, "invalid code"))

	rec := postJSON(s.T(), r, "/auth/verify-code", map[string]any{"email": "a@x.com", "code": 1111}, nil)

	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	assert.Equal(s.T(), "invalid code", decodeBody(s.T(), rec)["error_description"])
}

func (s *AuthHandlerSuite) TestLoginOK() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Login(gomock.Any(), &models.LoginRequest{Username: "alice123", Password: "pass1234", UserAgent: "TestAgent/1.0"}).
		Return(&models.TokenPair{AccessToken: "access.jwt", RefreshToken: "refresh.jwt"}, nil)

	rec := postJSON(s.T(), r, "/auth/login", map[string]string{
		"username": "alice123", "password": "pass1234",
	}, func(req *http.Request) {
		req.Header.Set("User-Agent", "TestAgent/1.0")
	})

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	body := decodeBody(s.T(), rec)
	assert.Equal(s.T(), "ok", body["result"])
	assert.Equal(s.T(), "access.jwt", body["access_token"])
	assert.Equal(s.T(), "refresh.jwt", body["refresh_token"])
}

func (s *AuthHandlerSuite) TestLoginUnauthorized() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid password"))

	rec := postJSON(s.T(), r, "/auth/login", map[string]string{
		"username": "alice123", "password": "wrong",
	}, nil)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	body := decodeBody(s.T(), rec)
	assert.Equal(s.T(), "unauthorized", body["error"])
	assert.Equal(s.T(), "invalid password", body["error_description"])
}

func (s *AuthHandlerSuite) TestRefreshUsesBearerHeader() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Refresh(gomock.Any(), &models.RefreshRequest{HeaderToken: "header.jwt"}).
		Return(&models.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)

	rec := postJSON(s.T(), r, "/auth/refresh", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer header.jwt")
	})

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), "a2", decodeBody(s.T(), rec)["access_token"])
}

func (s *AuthHandlerSuite) TestRefreshUsesBodyToken() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Refresh(gomock.Any(), &models.RefreshRequest{BodyToken: "body.jwt"}).
		Return(&models.TokenPair{AccessToken: "a3", RefreshToken: "r3"}, nil)

	rec := postJSON(s.T(), r, "/auth/refresh", map[string]string{"refresh_token": "body.jwt"}, nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), "r3", decodeBody(s.T(), rec)["refresh_token"])
}

func (s *AuthHandlerSuite) TestRefreshCarriesBothSources() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Refresh(gomock.Any(), &models.RefreshRequest{HeaderToken: "header.jwt", BodyToken: "body.jwt"}).
		Return(&models.TokenPair{AccessToken: "a4", RefreshToken: "r4"}, nil)

	rec := postJSON(s.T(), r, "/auth/refresh", map[string]string{"refresh_token": "body.jwt"}, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer header.jwt")
	})

	assert.Equal(s.T(), http.StatusOK, rec.Code)
}

func (s *AuthHandlerSuite) TestRefreshUnauthorized() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Refresh(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid refresh token"))

	rec := postJSON(s.T(), r, "/auth/refresh", nil, nil)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(s.T(), "invalid refresh token", decodeBody(s.T(), rec)["error_description"])
}

func (s *AuthHandlerSuite) TestInternalErrorOmitsDescription() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "stored credential is corrupt"))

	rec := postJSON(s.T(), r, "/auth/login", map[string]string{
		"username": "alice123", "password": "pass1234",
	}, nil)

	assert.Equal(s.T(), http.StatusInternalServerError, rec.Code)
	body := decodeBody(s.T(), rec)
	assert.Equal(s.T(), "internal_error", body["error"])
	assert.NotContains(s.T(), body, "error_description")
}

func (s *AuthHandlerSuite) TestUnsupportedContentType() {
	r, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("username=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusUnsupportedMediaType, rec.Code)
}
