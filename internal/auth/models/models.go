package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	dErrors "authgate/pkg/domain-errors"
)

// User is the persisted identity record. Created once on successful
// registration confirmation and never mutated afterwards. PasswordHash is the
// only credential ever stored; raw passwords exist solely inside the pending
// registration cache entry until confirmation.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PendingRegistration is the candidate payload parked in the verification
// code cache between send-code and verify-code. Password is still plaintext
// here; it is hashed at confirmation time.
type PendingRegistration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair carries the signed access and refresh tokens returned by login
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SendCodeRequest starts a registration: the payload is parked in the cache
// and a verification code is mailed to the address.
type SendCodeRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SendCodeRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *SendCodeRequest) Validate() error {
	if !govalidator.Matches(r.Username, `^[A-Za-z0-9]{5,30}$`) {
		return dErrors.New(dErrors.CodeValidation, "username must be 5-30 alphanumeric characters")
	}
	if !govalidator.IsEmail(r.Email) || !govalidator.StringLength(r.Email, "3", "255") {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if !govalidator.StringLength(r.Password, "8", "128") {
		return dErrors.New(dErrors.CodeValidation, "password must be 8-128 characters")
	}
	return nil
}

// VerifyCodeRequest redeems a verification code for the email it was sent to.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  int    `json:"code"`
}

func (r *VerifyCodeRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks the email only. The code is deliberately unconstrained:
// any value that does not match the pending entry reads as the same
// invalid-code conflict, so callers cannot probe the code's shape.
func (r *VerifyCodeRequest) Validate() error {
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	return nil
}

// LoginRequest exchanges credentials for a token pair. UserAgent is filled
// in by the HTTP layer for the audit trail, never by clients.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// RefreshRequest carries both possible refresh token sources: the transport
// location (Authorization header, filled in by the HTTP layer) and the JSON
// body field for clients without that transport.
type RefreshRequest struct {
	HeaderToken string `json:"-"`
	BodyToken   string `json:"refresh_token"`
}
