package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authgate/internal/audit"
	"authgate/internal/auth/handler"
	"authgate/internal/auth/password"
	"authgate/internal/auth/service"
	userstore "authgate/internal/auth/store/user"
	"authgate/internal/auth/store/verification"
	"authgate/internal/email"
	httpapi "authgate/internal/http"
	jwttoken "authgate/internal/jwt_token"
	"authgate/pkg/testutil"
)

// captureSender keeps sent mail in memory so tests can read the code back
// the way a user would from their inbox.
type captureSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (c *captureSender) Send(_ context.Context, msg email.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) waitForMail(t *testing.T) email.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		n := len(c.sent)
		var last email.Message
		if n > 0 {
			last = c.sent[n-1]
		}
		c.mu.Unlock()
		if n > 0 {
			return last
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no verification mail arrived")
	return email.Message{}
}

var codePattern = regexp.MustCompile(`\b(\d{4})\b`)

func codeFromMail(t *testing.T, msg email.Message) int {
	t.Helper()
	match := codePattern.FindStringSubmatch(msg.Body)
	require.NotNil(t, match, "mail body must carry a 4-digit code: %q", msg.Body)
	code, err := strconv.Atoi(match[1])
	require.NoError(t, err)
	return code
}

func newStack(t *testing.T) (http.Handler, *captureSender) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &captureSender{}
	dispatcher := email.NewDispatcher(sender, logger, 1, 16)
	t.Cleanup(func() { _ = dispatcher.Close() })

	issuer := jwttoken.NewIssuer("integration-key", "authgate-test", 15*time.Minute, 24*time.Hour)
	svc := service.New(
		verification.NewMemory(),
		userstore.NewMemory(),
		issuer,
		password.New(bcrypt.MinCost),
		dispatcher,
		audit.NopRecorder{},
		logger,
		5*time.Minute,
	)

	router := httpapi.NewRouter([]httpapi.Registrar{handler.New(svc, logger, nil)}, nil)
	return router, sender
}

func TestRegistrationFlow_HappyPath(t *testing.T) {
	router, sender := newStack(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/send-code", map[string]string{
		"username": "alice123",
		"email":    "alice@example.com",
		"password": "pass1234",
	}))
	testutil.AssertStatusOK(t, rr)

	code := codeFromMail(t, sender.waitForMail(t))

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-code", map[string]any{
		"email": "alice@example.com",
		"code":  code,
	}))
	testutil.AssertStatusOK(t, rr)

	// The same code must not create a second account.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-code", map[string]any{
		"email": "alice@example.com",
		"code":  code,
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice123",
		"password": "pass1234",
	}))
	testutil.AssertStatusOK(t, rr)
	tokens := testutil.UnmarshalResponse[map[string]string](t, rr)
	access := (*tokens)["access_token"]
	refresh := (*tokens)["refresh_token"]
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// Refresh via body token.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": refresh,
	}))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONHasKey(t, rr, "access_token")

	// Refresh via Authorization header.
	req := testutil.NewRequest(t, http.MethodPost, "/auth/refresh")
	req.Header.Set("Authorization", "Bearer "+refresh)
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)

	// An access token is not accepted as a refresh token.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": access,
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRegistrationFlow_WrongCode(t *testing.T) {
	router, sender := newStack(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/send-code", map[string]string{
		"username": "bob45678",
		"email":    "bob@example.com",
		"password": "pass1234",
	}))
	testutil.AssertStatusOK(t, rr)

	code := codeFromMail(t, sender.waitForMail(t))
	wrong := code%9000 + 1000
	if wrong == code {
		wrong++
	}

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-code", map[string]any{
		"email": "bob@example.com",
		"code":  wrong,
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

	// Login must fail because no account was created.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "bob45678",
		"password": "pass1234",
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRegistrationFlow_DuplicateSendCode(t *testing.T) {
	router, sender := newStack(t)

	body := map[string]string{
		"username": "carol777",
		"email":    "carol@example.com",
		"password": "pass1234",
	}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/send-code", body))
	testutil.AssertStatusOK(t, rr)

	code := codeFromMail(t, sender.waitForMail(t))
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-code", map[string]any{
		"email": "carol@example.com",
		"code":  code,
	}))
	testutil.AssertStatusOK(t, rr)

	// A second registration for the same identity is rejected up front.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/send-code", body))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	assert.Equal(t, "user already exists", testutil.UnmarshalErrorResponse(t, rr)["error_description"])
}
