package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
	"github.com/InkyQuill/jira-mcp-server/pkg/jira"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Jira API token in the OS keyring",
	Long:  `Prompts for an API token (input hidden) and stores it in the OS keyring for JIRA_HOST, so no token has to be kept in config files.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		host, err := jira.NormalizeBaseURL(viper.GetString("host"))
		if err != nil {
			return fmt.Errorf("%w: set JIRA_HOST or --jira-host", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "API token for %s: ", host)
		token, err := readToken(os.Stdin)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := storeToken(credentials.NewKeyring(), host, token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token stored in keyring for %s\n", credentials.HostKey(host))
		return nil
	},
}

// readToken reads one line, hiding input when stdin is a terminal.
func readToken(in *os.File) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(io.LimitReader(in, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.SplitN(string(b), "\n", 2)[0], nil
}

func storeToken(tokens jira.TokenStore, host, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("no token entered")
	}
	return tokens.Save(host, token)
}
