package common

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the subset of the scenario context the common steps need.
type TestContext interface {
	GET(path string) error
	LastStatus() int
	ResponseField(field string) (any, bool)
}

// RegisterSteps registers generic request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status is (\d+)$`, steps.responseStatusIs)
	ctx.Step(`^the response field "([^"]*)" is "([^"]*)"$`, steps.responseFieldIs)
	ctx.Step(`^the response has no field "([^"]*)"$`, steps.responseLacksField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) get(path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) responseStatusIs(status int) error {
	if s.tc.LastStatus() != status {
		return fmt.Errorf("expected status %d, got %d", status, s.tc.LastStatus())
	}
	return nil
}

func (s *commonSteps) responseFieldIs(field, expected string) error {
	v, ok := s.tc.ResponseField(field)
	if !ok {
		return fmt.Errorf("response has no field %q", field)
	}
	if fmt.Sprintf("%v", v) != expected {
		return fmt.Errorf("expected %q=%q, got %q", field, expected, fmt.Sprintf("%v", v))
	}
	return nil
}

func (s *commonSteps) responseLacksField(field string) error {
	if _, ok := s.tc.ResponseField(field); ok {
		return fmt.Errorf("response unexpectedly has field %q", field)
	}
	return nil
}
