package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"authgate/internal/audit"
	"authgate/internal/auth/models"
	"authgate/internal/email"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/sentinel"
)

// SendCode starts a registration: the candidate payload is parked in the code
// cache and a verification code is mailed to the address. The mail dispatch
// is fire-and-forget; a delivery failure never fails this call.
func (s *Service) SendCode(ctx context.Context, req *models.SendCodeRequest) error {
	ctx, span := s.tracer.Start(ctx, "auth.SendCode")
	defer span.End()

	if req == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	exists, err := s.users.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check user existence")
	}
	if exists {
		return dErrors.New(dErrors.CodeConflict, "user already exists")
	}

	code := s.genCode()
	payload := models.PendingRegistration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := s.codes.Put(ctx, req.Email, code, payload, s.codeTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pending registration")
	}

	s.mail.Enqueue(email.VerificationMessage(req.Email, code))

	if s.metrics != nil {
		s.metrics.CodesIssued.Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Action:  audit.ActionCodeSent,
		Subject: req.Username,
		Email:   req.Email,
		Outcome: audit.OutcomeOK,
	})
	s.logger.InfoContext(ctx, "verification code issued", "email", req.Email)
	return nil
}

// VerifyCode redeems a verification code. A missing, expired, or mismatched
// code all fail with the same invalid-code conflict so callers cannot
// distinguish expiry from a wrong guess. On a match the parked payload
// becomes a persisted identity and the pending entry is consumed.
func (s *Service) VerifyCode(ctx context.Context, req *models.VerifyCodeRequest) error {
	ctx, span := s.tracer.Start(ctx, "auth.VerifyCode")
	defer span.End()

	if req == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	code, payload, err := s.codes.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeConflict, "invalid code")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending registration")
	}
	if code != req.Code {
		return dErrors.New(dErrors.CodeConflict, "invalid code")
	}

	hash, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		// The race window between SendCode's existence check and this insert
		// is closed by the store's unique constraint, not by locking here.
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if err := s.codes.Consume(ctx, req.Email); err != nil {
		// The identity is already persisted; a consume failure only widens
		// the replay window until the TTL fires. Log and move on.
		s.logger.WarnContext(ctx, "failed to consume verification code", "email", req.Email, "error", err)
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Action:  audit.ActionUserRegistered,
		Subject: user.Username,
		Email:   user.Email,
		Outcome: audit.OutcomeOK,
	})
	s.logger.InfoContext(ctx, "user registered", "username", user.Username)
	return nil
}
