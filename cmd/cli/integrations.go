package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newIntegrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Manage issue tracker integrations",
	}

	cmd.AddCommand(newIntegrationsListCmd())
	cmd.AddCommand(newIntegrationsCreateCmd())
	cmd.AddCommand(newIntegrationsEnableCmd(true))
	cmd.AddCommand(newIntegrationsEnableCmd(false))
	cmd.AddCommand(newIntegrationsDeleteCmd())
	return cmd
}

func newIntegrationsListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issue tracker integrations",
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

			body, err := client.Get("/api/v1/integrations", query)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp PaginatedResponse[IntegrationResponse]
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"ID", "NAME", "PROVIDER", "ACTIVE", "CREATED AT"}
			var rows [][]string
			for _, i := range resp.Items {
				rows = append(rows, []string{
					i.ID.String(),
					i.Name,
					i.Provider,
					strconv.FormatBool(i.Active),
					i.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d of %d integrations", len(resp.Items), resp.Total))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	return cmd
}

func newIntegrationsCreateCmd() *cobra.Command {
	var name, provider string
	var settings, credentials []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue tracker integration",
		Long: `Creates an integration. Credentials are sent once over the API and
sealed server-side; they are never readable again. GitHub expects
--credential token=...; Jira expects --credential email=... and
--credential api_token=...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			settingsMap, err := parseKeyValues(settings)
			if err != nil {
				return fmt.Errorf("invalid --setting: %w", err)
			}
			credentialsMap, err := parseKeyValues(credentials)
			if err != nil {
				return fmt.Errorf("invalid --credential: %w", err)
			}

			req := CreateIntegrationRequest{
				Name:        name,
				Provider:    provider,
				Settings:    settingsMap,
				Credentials: credentialsMap,
			}

			body, err := client.Post("/api/v1/integrations", req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var i IntegrationResponse
			if err := json.Unmarshal(body, &i); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Integration created: %s (%s, id: %s)", i.Name, i.Provider, i.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Integration name (required)")
	cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider: github or jira (required)")
	cmd.MarkFlagRequired("provider")
	cmd.Flags().StringArrayVar(&settings, "setting", nil, "Provider setting as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&credentials, "credential", nil, "Provider credential as key=value (repeatable)")
	return cmd
}

func newIntegrationsEnableCmd(enable bool) *cobra.Command {
	var id string

	use := "disable"
	short := "Disable an integration"
	if enable {
		use = "enable"
		short = "Enable an integration"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			active := enable
			req := UpdateIntegrationRequest{Active: &active}

			if _, err := client.Put("/api/v1/integrations/"+url.PathEscape(id), req); err != nil {
				return err
			}

			printMessage(fmt.Sprintf("Integration %s: %s", use+"d", id))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Integration ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newIntegrationsDeleteCmd() *cobra.Command {
	var id string
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(fmt.Sprintf("Delete integration %s?", id), skipConfirm) {
				printMessage("Aborted")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if _, err := client.Delete("/api/v1/integrations/" + url.PathEscape(id)); err != nil {
				return err
			}

			printMessage("Integration deleted: " + id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Integration ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

// parseKeyValues parses repeated key=value flags into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[key] = value
	}
	return out, nil
}
