// Package service orchestrates the authentication lifecycle: registration
// behind a time-boxed email verification code, credential login, and token
// refresh. Collaborator errors are translated into the domain error taxonomy
// here; nothing below this boundary leaks store-specific error shapes.
package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"authgate/internal/audit"
	"authgate/internal/auth/metrics"
	"authgate/internal/auth/models"
	"authgate/internal/email"
)

// CodeStore parks pending registrations under a TTL. Keyed by email; a Put
// overwrites any prior entry for the key.
type CodeStore interface {
	Put(ctx context.Context, key string, code int, payload models.PendingRegistration, ttl time.Duration) error
	Get(ctx context.Context, key string) (int, models.PendingRegistration, error)
	Consume(ctx context.Context, key string) error
}

// UserStore is the persistence-facing user directory. Insert must surface a
// distinguishable conflict on unique violations; the Exists pre-check is
// optimistic only.
type UserStore interface {
	Exists(ctx context.Context, username, email string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

// TokenIssuer mints and rotates signed token pairs. Refresh returns the
// subject the new pair was minted for so the audit trail can name it.
type TokenIssuer interface {
	IssuePair(subject string) (*models.TokenPair, error)
	Refresh(headerToken, bodyToken string) (*models.TokenPair, string, error)
}

// PasswordHasher is the credential hashing policy.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// MailDispatcher queues outbound mail without blocking the request.
type MailDispatcher interface {
	Enqueue(msg email.Message)
}

// CodeGenerator produces verification codes. Uniform 4-digit numbers; a
// deliberately low-cardinality email-ownership check, not a credential.
type CodeGenerator func() int

func defaultCodeGenerator() int {
	return rand.IntN(9000) + 1000
}

// Service implements the authentication operations.
type Service struct {
	codes   CodeStore
	users   UserStore
	tokens  TokenIssuer
	hasher  PasswordHasher
	mail    MailDispatcher
	auditor audit.Recorder
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	codeTTL time.Duration
	genCode CodeGenerator
}

// Option configures a Service.
type Option func(*Service)

// WithCodeGenerator overrides the verification code source for tests.
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.genCode = gen
		}
	}
}

// WithMetrics attaches domain metrics. Nil-safe: tests run without them.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the authentication service.
func New(
	codes CodeStore,
	users UserStore,
	tokens TokenIssuer,
	hasher PasswordHasher,
	mail MailDispatcher,
	auditor audit.Recorder,
	logger *slog.Logger,
	codeTTL time.Duration,
	opts ...Option,
) *Service {
	s := &Service{
		codes:   codes,
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		mail:    mail,
		auditor: auditor,
		logger:  logger,
		tracer:  otel.Tracer("authgate/internal/auth/service"),
		codeTTL: codeTTL,
		genCode: defaultCodeGenerator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}
