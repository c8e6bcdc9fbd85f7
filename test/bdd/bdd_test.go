package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portlogistics-go/test/bdd/steps"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Store level steps first; the route steps use distinct wording so order
	// only matters for readability
	steps.InitializeTerminalScenario(sc)
	steps.InitializeVoyageScenario(sc)
}
