package scriptgen

import "strings"

// actionKind is the concrete script action inferred from a step's text.
type actionKind int

const (
	kindClick actionKind = iota
	kindFill
	kindNavigate
	kindVerify
	kindWait
)

var (
	fillVerbs     = []string{"fill", "enter", "input", "type"}
	navigateVerbs = []string{"navigate", "go to", "open "}
	verifyVerbs   = []string{"verify", "assert", "check", "confirm"}
)

// classify infers the script action for a step. Keyword order matters:
// "enter the postal code" must fill, not click, even when the step also
// names a button-ish selector. Steps without a selector can only navigate
// or settle.
func classify(actionText, selector string) actionKind {
	lower := strings.ToLower(actionText)

	if containsAny(lower, navigateVerbs) && !strings.Contains(lower, "menu") {
		return kindNavigate
	}
	if containsAny(lower, verifyVerbs) {
		return kindVerify
	}
	if selector == "" {
		return kindWait
	}
	if containsAny(lower, fillVerbs) {
		return kindFill
	}
	return kindClick
}

// fillValue picks a deterministic input for a fill step from field
// keywords in the action text. Generated scripts must be reproducible, so
// no randomness.
func fillValue(actionText string) string {
	lower := strings.ToLower(actionText)
	switch {
	case strings.Contains(lower, "first name"):
		return "Test"
	case strings.Contains(lower, "last name"):
		return "User"
	case strings.Contains(lower, "email"):
		return "test.user@example.com"
	case strings.Contains(lower, "postal") || strings.Contains(lower, "zip"):
		return "12345"
	case strings.Contains(lower, "phone"):
		return "5550100"
	case strings.Contains(lower, "search"):
		return "test"
	case strings.Contains(lower, "quantity") || strings.Contains(lower, "amount"):
		return "1"
	default:
		return "test input"
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
