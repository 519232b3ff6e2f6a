package scriptgen

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/qa-agent/selector"
	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// PlaywrightGenerator renders a test case as a standalone Python Playwright
// script. The script carries its own login (credentials from the
// environment), runs the steps with simple keyword heuristics, and prints
// the pass/fail sentinel before exiting.
type PlaywrightGenerator struct {
	// Headless controls the generated launch call. Scripts default to
	// headless since they run under the execution coordinator.
	Headless bool
}

func NewPlaywrightGenerator() *PlaywrightGenerator {
	return &PlaywrightGenerator{Headless: true}
}

// Generate renders the script. Credentials never appear in the output: the
// script reads APP_USERNAME and APP_PASSWORD at run time, and only the
// non-secret target configuration is embedded.
func (g *PlaywrightGenerator) Generate(testCase suite.TestCase, target Target) ([]byte, error) {
	if err := testCase.Validate(); err != nil {
		return nil, err
	}
	if target.TargetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	loginURL := target.LoginURL
	if loginURL == "" {
		loginURL = target.TargetURL
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "#!/usr/bin/env python3\n")
	fmt.Fprintf(&b, "# %s\n", pyComment(testCase.Title))
	fmt.Fprintf(&b, "# Case %s, generated %s\n", pyComment(testCase.ID), time.Now().UTC().Format(time.RFC3339))
	b.WriteString(`import os
import sys

from playwright.sync_api import sync_playwright

BASE_URL = ` + pyString(target.TargetURL) + `
LOGIN_URL = ` + pyString(loginURL) + `
USERNAME = os.environ.get('APP_USERNAME', ` + pyString(target.Username) + `)
PASSWORD = os.environ.get('APP_PASSWORD', '')

USERNAME_SELECTORS = ` + pyStringList(selector.UsernameCandidates) + `
PASSWORD_SELECTORS = ` + pyStringList(selector.PasswordCandidates) + `
SUBMIT_SELECTORS = ` + pyStringList(selector.SubmitCandidates) + `


def first_visible(page, selectors):
    for sel in selectors:
        loc = page.locator(sel)
        try:
            if loc.count() > 0 and loc.first.is_visible():
                return loc.first
        except Exception:
            continue
    return None


def login(page):
    page.goto(LOGIN_URL)
    page.wait_for_load_state('networkidle')
    user_field = first_visible(page, USERNAME_SELECTORS)
    if user_field is None:
        return
    user_field.fill(USERNAME)
    pass_field = first_visible(page, PASSWORD_SELECTORS)
    if pass_field is not None:
        pass_field.fill(PASSWORD)
    submit = first_visible(page, SUBMIT_SELECTORS)
    if submit is not None:
        submit.click()
    page.wait_for_load_state('networkidle')


def run(page):
    login(page)
    if not page.url.startswith(BASE_URL):
        page.goto(BASE_URL)
        page.wait_for_load_state('networkidle')
`)

	for i, step := range testCase.Steps {
		g.writeStep(&b, i+1, step)
	}

	b.WriteString(`

def main():
    with sync_playwright() as p:
        browser = p.chromium.launch(headless=` + pyBool(g.Headless) + `)
        page = browser.new_page()
        try:
            run(page)
            print(` + pyString(PassSentinel) + `)
        except Exception as exc:
            print('step failed: %s' % exc, file=sys.stderr)
            print(` + pyString(FailSentinel) + `)
            browser.close()
            sys.exit(1)
        browser.close()


if __name__ == '__main__':
    main()
`)

	return b.Bytes(), nil
}

func (g *PlaywrightGenerator) writeStep(b *bytes.Buffer, n int, step suite.Step) {
	fmt.Fprintf(b, "\n    # Step %d: %s\n", n, pyComment(step.ActionText))

	switch classify(step.ActionText, step.Selector) {
	case kindNavigate:
		if strings.HasPrefix(step.Selector, "/") {
			fmt.Fprintf(b, "    page.goto(BASE_URL + %s)\n", pyString(step.Selector))
		} else {
			fmt.Fprintf(b, "    page.goto(BASE_URL)\n")
		}
		fmt.Fprintf(b, "    page.wait_for_load_state('networkidle')\n")
	case kindFill:
		fmt.Fprintf(b, "    page.locator(%s).first.fill(%s)\n",
			pyString(step.Selector), pyString(fillValue(step.ActionText)))
	case kindVerify:
		if step.Selector != "" {
			fmt.Fprintf(b, "    page.wait_for_selector(%s, timeout=10000)\n", pyString(step.Selector))
		} else {
			fmt.Fprintf(b, "    page.wait_for_load_state('networkidle')\n")
		}
	case kindWait:
		fmt.Fprintf(b, "    page.wait_for_load_state('networkidle')\n")
	default:
		fmt.Fprintf(b, "    page.locator(%s).first.click()\n", pyString(step.Selector))
		fmt.Fprintf(b, "    page.wait_for_load_state('networkidle')\n")
	}
}

func pyStringList(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, pyString(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
