package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newExecuteCmd() *cobra.Command {
	var suiteName, caseID string

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a suite or a single test case",
		Long: `Executes generated test cases and records a verdict for each run.
With --case-id one case runs and the settling run record is printed; without
it the whole suite runs through the worker pool and the summary is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			if caseID != "" {
				return executeCase(client, suiteName, caseID)
			}
			return executeSuite(client, suiteName)
		},
	}

	cmd.Flags().StringVar(&suiteName, "suite", "", "Suite name (required)")
	cmd.MarkFlagRequired("suite")
	cmd.Flags().StringVar(&caseID, "case-id", "", "Execute only this test case")
	return cmd
}

func executeCase(client *Client, suiteName, caseID string) error {
	path := fmt.Sprintf("/api/v1/suites/%s/cases/%s/execute",
		url.PathEscape(suiteName), url.PathEscape(caseID))
	body, err := client.Post(path, nil)
	if err != nil {
		return err
	}

	if flagJSON {
		var raw json.RawMessage
		json.Unmarshal(body, &raw)
		printJSON(raw)
		return nil
	}

	var r TestRunResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printRun(r)
	return nil
}

func executeSuite(client *Client, suiteName string) error {
	path := fmt.Sprintf("/api/v1/suites/%s/execute", url.PathEscape(suiteName))
	body, err := client.Post(path, nil)
	if err != nil {
		return err
	}

	if flagJSON {
		var raw json.RawMessage
		json.Unmarshal(body, &raw)
		printJSON(raw)
		return nil
	}

	var summary SummaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	headers := []string{"CASE ID", "TITLE", "MODE", "VERDICT", "DURATION"}
	var rows [][]string
	for _, r := range summary.Runs {
		rows = append(rows, []string{
			r.CaseID,
			r.CaseTitle,
			string(r.Mode),
			string(r.Verdict),
			fmt.Sprintf("%dms", r.DurationMS),
		})
	}
	printTable(headers, rows)
	printMessage(fmt.Sprintf("\n%d total: %d pass, %d fail, %d timeout, %d error",
		summary.Total, summary.Pass, summary.Fail, summary.Timeout, summary.Error))
	return nil
}

func printRun(r TestRunResponse) {
	headers := []string{"FIELD", "VALUE"}
	rows := [][]string{
		{"ID", r.ID.String()},
		{"Suite", r.SuiteName},
		{"Case ID", r.CaseID},
		{"Case Title", r.CaseTitle},
		{"Mode", string(r.Mode)},
		{"Verdict", string(r.Verdict)},
		{"Script Key", valueOrDash(r.ScriptKey)},
		{"Started At", formatTime(r.StartedAt)},
		{"Completed At", formatTime(r.CompletedAt)},
		{"Duration", fmt.Sprintf("%dms", r.DurationMS)},
	}
	printTable(headers, rows)

	if r.Output != "" {
		printMessage("\nOutput:")
		printMessage(r.Output)
	}
}
