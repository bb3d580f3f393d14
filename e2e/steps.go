package e2e

import (
	"github.com/cucumber/godog"

	"authgate/e2e/steps/auth"
	"authgate/e2e/steps/common"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
}
