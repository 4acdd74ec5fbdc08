package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/user"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserShowCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		configPath string
		email      string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and print their API token",
		Long:  "Registers a user account. The printed API token is the bearer credential\nfor the HTTP API; it is only shown once here.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreate(cmd, configPath, email, name)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func runUserCreate(cmd *cobra.Command, configPath, email, name string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	u, err := user.Create(gormDB, email, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %s (%s)\n", u.Email, u.ID)
	fmt.Fprintf(out, "API token: %s\n", u.APIToken)
	return nil
}

func newUserShowCmd() *cobra.Command {
	var (
		configPath string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a user and their workspace memberships",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserShow(cmd, configPath, email)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func runUserShow(cmd *cobra.Command, configPath, email string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	u, err := user.ByEmail(gormDB, email)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s)\n", u.Email, u.ID)
	if u.DisplayName != "" {
		fmt.Fprintf(out, "Name: %s\n", u.DisplayName)
	}

	var members []models.WorkspaceMember
	if err := gormDB.Where("user_id = ?", u.ID).Find(&members).Error; err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}
	if len(members) == 0 {
		fmt.Fprintln(out, "No workspace memberships.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WORKSPACE\tROLE\tJOINED")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.WorkspaceID, m.Role, m.JoinedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
