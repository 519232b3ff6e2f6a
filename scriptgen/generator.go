// Package scriptgen materializes extracted test cases as standalone
// executable scripts. A generated script replays its own login and its
// case's steps against a fresh browser, then prints a fixed sentinel so
// the execution coordinator can judge the run from output alone.
//
// Credentials are never embedded: scripts read APP_USERNAME and
// APP_PASSWORD from the environment at run time.
package scriptgen

import (
	"github.com/hairizuan-noorazman/qa-agent/suite"
)

const (
	// PassSentinel is printed by a generated script after completing every
	// step without error.
	PassSentinel = "Final Result: PASS"

	// FailSentinel is printed by a generated script when a step raises.
	FailSentinel = "Final Result: FAIL"
)

// Target is the non-secret runtime configuration embedded in a generated
// script.
type Target struct {
	TargetURL string
	LoginURL  string
	Username  string
}

// Generator renders one test case into an executable script.
// Implementations are pure; persistence is the Materializer's job.
type Generator interface {
	Generate(testCase suite.TestCase, target Target) ([]byte, error)
}
