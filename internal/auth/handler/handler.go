package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"authgate/internal/auth/models"
	"authgate/internal/platform/metrics"
	"authgate/internal/platform/middleware"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks

// Service defines the interface for authentication operations.
type Service interface {
	SendCode(ctx context.Context, req *models.SendCodeRequest) error
	VerifyCode(ctx context.Context, req *models.VerifyCodeRequest) error
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.TokenPair, error)
}

// Handler handles the authentication endpoints.
type Handler struct {
	logger  *slog.Logger
	auth    Service
	metrics *metrics.Metrics
}

// New creates a new authentication Handler.
func New(auth Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		auth:    auth,
		metrics: m,
	}
}

// Register registers the authentication routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(30 * time.Second))
	authRouter.Use(middleware.ContentTypeJSON)
	authRouter.Use(middleware.Latency(h.metrics))
	authRouter.Post("/auth/send-code", h.handleSendCode)
	authRouter.Post("/auth/verify-code", h.handleVerifyCode)
	authRouter.Post("/auth/login", h.handleLogin)
	authRouter.Post("/auth/refresh", h.handleRefresh)

	r.Mount("/", authRouter)
}

type okResponse struct {
	Result string `json:"result"`
}

type tokenResponse struct {
	Result       string `json:"result"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) handleSendCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SendCodeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.auth.SendCode(ctx, &req); err != nil {
		h.writeServiceError(ctx, w, "send code", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, okResponse{Result: "ok"})
}

func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VerifyCodeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.auth.VerifyCode(ctx, &req); err != nil {
		h.writeServiceError(ctx, w, "verify code", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, okResponse{Result: "ok"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.UserAgent = r.UserAgent()

	pair, err := h.auth.Login(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, "login", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		Result:       "ok",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RefreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := httputil.Decode(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	req.HeaderToken = bearerToken(r)

	pair, err := h.auth.Refresh(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, "refresh", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		Result:       "ok",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "operation failed",
			"request_id", middleware.GetRequestID(ctx),
			"operation", op,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "request rejected",
			"request_id", middleware.GetRequestID(ctx),
			"operation", op,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
