package agent

import (
	"fmt"
	"strings"

	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// TaskSpec is the hand-off to the exploration agent. It holds the goal and
// the target URL and nothing else, so the task text is secret-free by
// construction; the leak guard double-checks the rendered text anyway.
type TaskSpec struct {
	Goal      string
	TargetURL string
}

// DefaultGoal is used when a suite carries no explicit exploration goal.
const DefaultGoal = "Explore the application's main user flows and derive test cases covering them."

// BuildTask renders the exploration task text: the goal, the target, the
// already-logged-in contract, and the strict JSON output envelope.
func BuildTask(spec TaskSpec) string {
	goal := strings.TrimSpace(spec.Goal)
	if goal == "" {
		goal = DefaultGoal
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are exploring a web application at %s.\n\n", spec.TargetURL)
	fmt.Fprintf(&b, "Goal: %s\n\n", goal)
	b.WriteString(`You are already logged in. Do not attempt any login flow and do not ask for credentials.

Explore the application by observing the page and acting on its elements. When you have seen enough, produce test cases for the flows you exercised.

Output exactly one JSON object, nothing else:
{"test_cases": [{"id": "TC1", "title": "...", "steps": ["...", "..."]}]}

Every step that touches an element must name it, for example:
"Click the add to cart button using selector: #add-to-cart"`)
	return b.String()
}

// DirectedTask renders the execution-fallback task: replay the stored steps
// verbatim and report a bare verdict.
func DirectedTask(targetURL string, steps []suite.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are operating a web application at %s. You are already logged in; do not attempt any login flow.\n\n", targetURL)
	b.WriteString("Execute the following steps exactly, in order:\n")
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step.ActionText)
	}
	b.WriteString("\nIf every step succeeds, your final line must be exactly PASS.\nIf any step cannot be completed, your final line must be exactly FAIL.")
	return b.String()
}
