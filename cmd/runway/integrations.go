package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	slackbc "github.com/runwayhq/runway/internal/broadcast/slack"
	"github.com/runwayhq/runway/internal/user"
)

func newIntegrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Chat integration commands",
	}

	cmd.AddCommand(newSlackConnectCmd())
	cmd.AddCommand(newSlackShowCmd())
	cmd.AddCommand(newSlackDisconnectCmd())
	return cmd
}

func newSlackConnectCmd() *cobra.Command {
	var (
		configPath  string
		workspaceID string
		actorEmail  string
		teamID      string
		channelID   string
		channelName string
	)

	cmd := &cobra.Command{
		Use:   "slack-connect",
		Short: "Connect a workspace to a Slack channel",
		Long: `Connects a workspace to Slack using a bot token, as an alternative to
the OAuth flow in the API. The token is prompted without echo and is
never written to the terminal or config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlackConnect(cmd, configPath, workspaceID, actorEmail, teamID, channelID, channelName)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace ID (required)")
	cmd.Flags().StringVar(&actorEmail, "actor", "", "email of the acting founder (required)")
	cmd.Flags().StringVar(&teamID, "team", "", "Slack team ID")
	cmd.Flags().StringVar(&channelID, "channel-id", "", "Slack channel ID (required)")
	cmd.Flags().StringVar(&channelName, "channel-name", "", "Slack channel name")
	cmd.MarkFlagRequired("workspace")
	cmd.MarkFlagRequired("actor")
	cmd.MarkFlagRequired("channel-id")
	return cmd
}

func runSlackConnect(cmd *cobra.Command, configPath, workspaceID, actorEmail, teamID, channelID, channelName string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	actor, err := user.ByEmail(gormDB, actorEmail)
	if err != nil {
		return err
	}

	botToken, err := promptSecret(cmd, "Slack bot token (xoxb-...): ")
	if err != nil {
		return err
	}
	if botToken == "" {
		return fmt.Errorf("bot token is required")
	}

	integ, err := slackbc.Save(cmd.Context(), gormDB, slackbc.SaveOpts{
		WorkspaceID: workspaceID,
		BotToken:    botToken,
		TeamID:      teamID,
		ChannelID:   channelID,
		ChannelName: channelName,
		ActorID:     actor.ID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Connected workspace %s to Slack channel %s\n", workspaceID, displayChannel(integ.ChannelName, integ.ChannelID))
	return nil
}

func newSlackShowCmd() *cobra.Command {
	var (
		configPath  string
		workspaceID string
	)

	cmd := &cobra.Command{
		Use:   "slack-show",
		Short: "Show a workspace's Slack integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlackShow(cmd, configPath, workspaceID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace ID (required)")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func runSlackShow(cmd *cobra.Command, configPath, workspaceID string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	integ, err := slackbc.IntegrationFor(gormDB, workspaceID)
	if err != nil {
		return err
	}
	if integ == nil {
		fmt.Fprintf(out, "Workspace %s is not connected to Slack.\n", workspaceID)
		return nil
	}

	fmt.Fprintf(out, "Channel: %s\n", displayChannel(integ.ChannelName, integ.ChannelID))
	if integ.SlackTeamID != "" {
		fmt.Fprintf(out, "Team: %s\n", integ.SlackTeamID)
	}
	fmt.Fprintf(out, "Connected: %s\n", integ.ConnectedAt.Format("2006-01-02 15:04"))
	return nil
}

func newSlackDisconnectCmd() *cobra.Command {
	var (
		configPath  string
		workspaceID string
		actorEmail  string
	)

	cmd := &cobra.Command{
		Use:   "slack-disconnect",
		Short: "Disconnect a workspace from Slack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlackDisconnect(cmd, configPath, workspaceID, actorEmail)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "runway.yaml", "path to Runway config file")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace ID (required)")
	cmd.Flags().StringVar(&actorEmail, "actor", "", "email of the acting founder (required)")
	cmd.MarkFlagRequired("workspace")
	cmd.MarkFlagRequired("actor")
	return cmd
}

func runSlackDisconnect(cmd *cobra.Command, configPath, workspaceID, actorEmail string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	actor, err := user.ByEmail(gormDB, actorEmail)
	if err != nil {
		return err
	}

	if err := slackbc.Disconnect(gormDB, workspaceID, actor.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Disconnected workspace %s from Slack\n", workspaceID)
	return nil
}

// promptSecret reads a secret without echo when stdin is a terminal, and
// falls back to a plain line read when it is piped.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}

func displayChannel(name, id string) string {
	if name != "" {
		return "#" + name
	}
	return id
}
