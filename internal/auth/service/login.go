package service

import (
	"context"
	"errors"

	"authgate/internal/audit"
	"authgate/internal/auth/device"
	"authgate/internal/auth/models"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/sentinel"
)

// Login exchanges credentials for a token pair. The invalid-username versus
// invalid-password distinction is deliberate: it trades an enumeration
// signal for debuggability and matches the published API contract.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deviceName := device.ParseUserAgent(req.UserAgent)

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLoginFailure(ctx, req.Username, deviceName, "invalid username")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// A hash bcrypt cannot parse is store corruption, not a bad password.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored credential is corrupt")
	}
	if !ok {
		s.recordLoginFailure(ctx, req.Username, deviceName, "invalid password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid password")
	}

	pair, err := s.tokens.IssuePair(user.Username)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue tokens")
	}

	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues("success").Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Action:  audit.ActionLoginSucceeded,
		Subject: user.Username,
		Device:  deviceName,
		Outcome: audit.OutcomeOK,
	})
	return pair, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, username, deviceName, reason string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues("failure").Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Action:  audit.ActionLoginFailed,
		Subject: username,
		Device:  deviceName,
		Outcome: audit.OutcomeDenied,
		Reason:  reason,
	})
	s.logger.InfoContext(ctx, "login rejected", "username", username, "reason", reason)
}
