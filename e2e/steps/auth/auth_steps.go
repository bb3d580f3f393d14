package auth

import (
	"fmt"
	"math/rand"

	"github.com/cucumber/godog"
)

// TestContext is the subset of the scenario context the auth steps need.
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	LastStatus() int
	SaveTokens() error
	RefreshToken() string
}

// RegisterSteps registers registration and token step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I request a verification code for username "([^"]*)" email "([^"]*)" password "([^"]*)"$`, steps.requestCode)
	ctx.Step(`^I request a verification code for a fresh random user$`, steps.requestCodeRandomUser)
	ctx.Step(`^I confirm email "([^"]*)" with code (\d+)$`, steps.confirmCode)
	ctx.Step(`^I log in with username "([^"]*)" and password "([^"]*)"$`, steps.login)
	ctx.Step(`^I save the token pair$`, steps.saveTokens)
	ctx.Step(`^I refresh with the saved refresh token in the body$`, steps.refreshWithBody)
	ctx.Step(`^I refresh with the saved refresh token as a bearer header$`, steps.refreshWithHeader)
	ctx.Step(`^I refresh with token "([^"]*)"$`, steps.refreshWithLiteral)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) requestCode(username, email, password string) error {
	return s.tc.POST("/auth/send-code", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
}

func (s *authSteps) requestCodeRandomUser() error {
	n := rand.Intn(1_000_000)
	return s.requestCode(
		fmt.Sprintf("user%06d", n),
		fmt.Sprintf("user%06d@example.com", n),
		"password123",
	)
}

func (s *authSteps) confirmCode(email string, code int) error {
	return s.tc.POST("/auth/verify-code", map[string]any{
		"email": email,
		"code":  code,
	}, nil)
}

func (s *authSteps) login(username, password string) error {
	return s.tc.POST("/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
}

func (s *authSteps) saveTokens() error {
	return s.tc.SaveTokens()
}

func (s *authSteps) refreshWithBody() error {
	return s.tc.POST("/auth/refresh", map[string]string{
		"refresh_token": s.tc.RefreshToken(),
	}, nil)
}

func (s *authSteps) refreshWithHeader() error {
	return s.tc.POST("/auth/refresh", nil, map[string]string{
		"Authorization": "Bearer " + s.tc.RefreshToken(),
	})
}

func (s *authSteps) refreshWithLiteral(token string) error {
	return s.tc.POST("/auth/refresh", map[string]string{
		"refresh_token": token,
	}, nil)
}
