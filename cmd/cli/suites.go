package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newSuitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suites",
		Short: "Manage test suites",
	}

	cmd.AddCommand(newSuitesListCmd())
	cmd.AddCommand(newSuitesCreateCmd())
	cmd.AddCommand(newSuitesGetCmd())
	cmd.AddCommand(newSuitesDeleteCmd())
	cmd.AddCommand(newSuitesGenerateCmd())
	return cmd
}

func newSuitesListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List test suites",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				query.Set("offset", strconv.Itoa(offset))
			}

			body, err := client.Get("/api/v1/suites", query)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp PaginatedResponse[SuiteResponse]
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"NAME", "TARGET URL", "CASES", "SCRIPTS", "GENERATED AT"}
			var rows [][]string
			for _, s := range resp.Items {
				generatedAt := "-"
				if s.GeneratedAt != nil {
					generatedAt = s.GeneratedAt.Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{
					s.Name,
					s.Config.TargetURL,
					strconv.Itoa(len(s.Cases)),
					strconv.Itoa(len(s.Scripts)),
					generatedAt,
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d of %d suites", len(resp.Items), resp.Total))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	return cmd
}

func newSuitesCreateCmd() *cobra.Command {
	var name, description, targetURL, goal, username string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new test suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := CreateSuiteRequest{
				Name:        name,
				Description: description,
				TargetURL:   targetURL,
				Goal:        goal,
				Username:    username,
			}

			body, err := client.Post("/api/v1/suites", req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var s SuiteResponse
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Suite created: %s (target: %s)", s.Name, s.Config.TargetURL))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Suite name (required)")
	cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&description, "description", "", "Suite description")
	cmd.Flags().StringVar(&targetURL, "target-url", "", "Target application URL (required)")
	cmd.MarkFlagRequired("target-url")
	cmd.Flags().StringVar(&goal, "goal", "", "Exploration goal for generation")
	cmd.Flags().StringVar(&username, "username", "", "Test account username")
	return cmd
}

func newSuitesGetCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a test suite by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get("/api/v1/suites/"+url.PathEscape(name), nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var s SuiteResponse
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printSuite(s)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Suite name (required)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func printSuite(s SuiteResponse) {
	generatedAt := "-"
	if s.GeneratedAt != nil {
		generatedAt = s.GeneratedAt.Format("2006-01-02 15:04:05")
	}

	headers := []string{"FIELD", "VALUE"}
	rows := [][]string{
		{"Name", s.Name},
		{"Description", s.Description},
		{"Target URL", s.Config.TargetURL},
		{"Goal", s.Config.Goal},
		{"Username", s.Config.Username},
		{"Generated At", generatedAt},
		{"Created At", s.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	printTable(headers, rows)

	if len(s.Cases) == 0 {
		printMessage("\nNo test cases; run `qactl suites generate` first.")
		return
	}

	printMessage("")
	caseHeaders := []string{"CASE ID", "TITLE", "STEPS", "SCRIPT"}
	var caseRows [][]string
	for _, tc := range s.Cases {
		script := "-"
		if key := s.Scripts[tc.ID]; key != "" {
			script = key
		}
		caseRows = append(caseRows, []string{
			tc.ID,
			tc.Title,
			strconv.Itoa(len(tc.Steps)),
			script,
		})
	}
	printTable(caseHeaders, caseRows)
}

func newSuitesDeleteCmd() *cobra.Command {
	var name string
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a test suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(fmt.Sprintf("Delete suite %q?", name), skipConfirm) {
				printMessage("Aborted")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if _, err := client.Delete("/api/v1/suites/" + url.PathEscape(name)); err != nil {
				return err
			}

			printMessage("Suite deleted: " + name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Suite name (required)")
	cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func newSuitesGenerateCmd() *cobra.Command {
	var name, description, targetURL, goal string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Explore the target application and regenerate the suite",
		Long: `Runs the generation pipeline for a suite: log in to the target
application, explore it with the agent, extract test cases, and materialize
one runnable script per case. Creates the suite if it does not exist yet
(--target-url required in that case). This call is synchronous and can take
several minutes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := GenerateRequest{
				Description: description,
				TargetURL:   targetURL,
				Goal:        goal,
			}

			body, err := client.Post("/api/v1/suites/"+url.PathEscape(name)+"/generate", req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var s SuiteResponse
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Generation complete: %d cases, %d scripts", len(s.Cases), len(s.Scripts)))
			printMessage("")
			printSuite(s)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Suite name (required)")
	cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&description, "description", "", "Suite description")
	cmd.Flags().StringVar(&targetURL, "target-url", "", "Target application URL")
	cmd.Flags().StringVar(&goal, "goal", "", "Exploration goal")
	return cmd
}
