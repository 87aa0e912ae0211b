package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
	"github.com/InkyQuill/jira-mcp-server/pkg/installer"
	"github.com/InkyQuill/jira-mcp-server/pkg/jira"
)

func main() {
	fmt.Println("=== Jira MCP Server Installer ===")
	fmt.Println()

	projectRoot, err := installer.GetProjectRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to get project root: %v\n", err)
		os.Exit(1)
	}

	promptConfig, err := installer.PromptUser()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	promptConfig.JiraHost, err = jira.NormalizeBaseURL(promptConfig.JiraHost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	binaryConfig, err := installer.GetBinaryConfig(promptConfig.Mode, projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if promptConfig.UseKeyring {
		if err := credentials.NewKeyring().Save(promptConfig.JiraHost, promptConfig.Token); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v. The token will be written to the config file instead.\n", err)
			promptConfig.UseKeyring = false
		} else {
			fmt.Printf("Token stored in the OS keyring for %s\n", credentials.HostKey(promptConfig.JiraHost))
		}
	}

	serverConfig := installer.CreateServerConfig(binaryConfig, promptConfig)

	fmt.Println()
	environments, err := installer.PickEnvironments(os.Stdin, os.Stdout)
	if errors.Is(err, installer.ErrCancelled) {
		fmt.Println("Installation cancelled.")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	paths := installer.GetConfigPaths()

	successCount := 0
	for _, env := range environments {
		fmt.Printf("\nConfiguring %s...\n", env)
		if err := installer.UpdateConfig(env, paths, serverConfig); err != nil {
			fmt.Fprintf(os.Stderr, "  Error configuring %s: %v\n", env, err)
		} else {
			fmt.Printf("  ✓ %s configured successfully\n", env)
			successCount++
		}
	}

	fmt.Println()
	if successCount == 0 {
		fmt.Println("No environments were configured successfully.")
		os.Exit(1)
	}
	fmt.Printf("Successfully configured %d environment(s)!\n", successCount)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Restart your development environment(s)")
	fmt.Printf("2. The MCP server will be available as '%s'\n", installer.ServerName)
	if promptConfig.Mode == "local" {
		fmt.Println("3. Make sure the binary exists at:", binaryConfig.LocalPath)
	} else {
		fmt.Printf("3. Make sure the Docker image exists: docker build -t %s .\n", installer.DockerImage)
	}
}
