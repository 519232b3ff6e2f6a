// Package extractor turns raw agent replies into validated test cases. The
// reply is supposed to be a single JSON envelope, but agents wrap output in
// markdown fences, prepend prose, and truncate mid-structure, so extraction
// runs a strategy chain and the first strategy that yields at least one
// valid case wins. The chain never fails: the last strategy wraps the raw
// reply into a diagnostic case.
//
// All functions are pure; nothing here does I/O.
package extractor

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// Strategy identifies which extraction strategy produced the result.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyFenced   Strategy = "fenced"
	StrategyRepaired Strategy = "repaired"
	StrategyFallback Strategy = "fallback"
)

// markerKey is the envelope key extraction anchors on.
const markerKey = `"test_cases"`

// rawSampleLimit caps how much of an unparseable reply the diagnostic case
// carries.
const rawSampleLimit = 500

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	selectorRe    = regexp.MustCompile(`(?i)(?:css\s+)?selectors?:\s*(.+)`)
)

// envelope mirrors the output contract given to the agent.
type envelope struct {
	TestCases []rawCase `json:"test_cases"`
}

// rawCase tolerates agents emitting numbers for ids and other loose typing;
// validation coerces and filters.
type rawCase struct {
	ID    interface{}   `json:"id"`
	Title interface{}   `json:"title"`
	Steps []interface{} `json:"steps"`
}

// Extract runs the strategy chain over a raw agent reply.
func Extract(raw string) ([]suite.TestCase, Strategy) {
	if cases, ok := parseEnvelope(raw); ok {
		return cases, StrategyDirect
	}
	if cases, ok := extractFenced(raw); ok {
		return cases, StrategyFenced
	}
	if cases, ok := extractRepaired(raw); ok {
		return cases, StrategyRepaired
	}
	return []suite.TestCase{fallbackCase(raw)}, StrategyFallback
}

// extractFenced tries every markdown-fenced block in order.
func extractFenced(raw string) ([]suite.TestCase, bool) {
	for _, match := range fencedBlockRe.FindAllStringSubmatch(raw, -1) {
		if cases, ok := parseEnvelope(match[1]); ok {
			return cases, true
		}
	}
	return nil, false
}

// extractRepaired anchors on the envelope key, flattens raw newlines, and
// if the tail is truncated closes the structure before parsing again.
func extractRepaired(raw string) ([]suite.TestCase, bool) {
	markerAt := strings.Index(raw, markerKey)
	if markerAt < 0 {
		return nil, false
	}
	start := strings.LastIndex(raw[:markerAt], "{")
	if start < 0 {
		return nil, false
	}

	candidate := strings.NewReplacer("\n", " ", "\r", "").Replace(raw[start:])
	if cases, ok := parseEnvelope(candidate); ok {
		return cases, true
	}
	return parseEnvelope(repairJSON(candidate))
}

// parseEnvelope decodes one envelope and validates its cases. Success means
// at least one case survived validation.
func parseEnvelope(text string) ([]suite.TestCase, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, false
	}
	cases := validateCases(env.TestCases)
	if len(cases) == 0 {
		return nil, false
	}
	return cases, true
}

// validateCases drops cases missing an id, a title, or any usable step.
func validateCases(raws []rawCase) []suite.TestCase {
	cases := make([]suite.TestCase, 0, len(raws))
	for _, rc := range raws {
		id := coerceString(rc.ID)
		title := coerceString(rc.Title)
		if id == "" || title == "" {
			continue
		}

		steps := make([]suite.Step, 0, len(rc.Steps))
		for _, rawStep := range rc.Steps {
			action := strings.TrimSpace(coerceString(rawStep))
			if action == "" {
				continue
			}
			steps = append(steps, suite.Step{
				ActionText: action,
				Selector:   ParseSelector(action),
			})
		}
		if len(steps) == 0 {
			continue
		}

		cases = append(cases, suite.TestCase{ID: id, Title: title, Steps: steps})
	}
	return cases
}

// ParseSelector pulls the CSS selector out of a step's action text. Steps
// follow the "... using selector: <css>" convention; the selector runs to
// the end of the line with sentence punctuation trimmed. A trailing ')' is
// kept when the selector's own parentheses need it.
func ParseSelector(action string) string {
	match := selectorRe.FindStringSubmatch(action)
	if match == nil {
		return ""
	}
	sel := strings.TrimSpace(match[1])
	sel = strings.TrimRight(sel, ".,")
	for strings.HasSuffix(sel, ")") && strings.Count(sel, ")") > strings.Count(sel, "(") {
		sel = strings.TrimSpace(strings.TrimSuffix(sel, ")"))
		sel = strings.TrimRight(sel, ".,")
	}
	return strings.TrimSpace(sel)
}

// coerceString renders the loose JSON value types agents emit for ids and
// titles.
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// fallbackCase wraps an unparseable reply into one diagnostic case so a
// generation run always returns something reviewable.
func fallbackCase(raw string) suite.TestCase {
	sample := strings.TrimSpace(raw)
	if len(sample) > rawSampleLimit {
		sample = sample[:rawSampleLimit]
	}
	if sample == "" {
		sample = "agent returned no output"
	}
	return suite.TestCase{
		ID:    "ERR",
		Title: "Failed to parse agent response",
		Steps: []suite.Step{{ActionText: sample}},
	}
}
