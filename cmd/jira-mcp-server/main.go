package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
	"github.com/InkyQuill/jira-mcp-server/pkg/jira"
	iolog "github.com/InkyQuill/jira-mcp-server/pkg/log"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// Injected by goreleaser
var version = "dev"
var commit = "none"
var date = "unknown"

// envFiles are loaded in order; variables already set are never overridden.
var envFiles = []string{".env.jira", ".env"}

var (
	rootCmd = &cobra.Command{
		Use:     "jira-mcp-server",
		Short:   "Jira MCP Server",
		Long:    `A Jira MCP server that provides tools for working with Jira issues, fields and workflows via the Model Context Protocol.`,
		Version: fmt.Sprintf("Version: %s\nCommit: %s\nBuild Date: %s", version, commit, date),
	}

	stdioCmd = &cobra.Command{
		Use:   "stdio",
		Short: "Start server communicating via standard input/output",
		Long:  `Starts the Jira MCP server, listening for JSON-RPC messages on stdin and sending responses to stdout.`,
		Run: func(_ *cobra.Command, _ []string) {
			logger, err := initLogger(viper.GetString("log.level"), viper.GetString("log.file"))
			if err != nil {
				stdlog.Fatalf("Failed to initialize logger: %v", err)
			}
			if err := runStdio(logger); err != nil {
				logger.Fatal(err)
			}
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("{{.Short}}\n{{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringSlice("toolsets", jira.DefaultTools, "Comma-separated list of toolsets to enable (e.g., 'issues,workflow' or 'all')")
	flags.Bool("read-only", false, "Restrict the server to read-only operations")
	flags.String("jira-host", "", "Jira base URL or host name (e.g., example.atlassian.net)")
	flags.String("jira-email", "", "Account email, used with an API token for Jira Cloud")
	flags.String("jira-api-token", "", "Jira Cloud API token")
	flags.String("jira-bearer-token", "", "Personal access token for Jira Server / Data Center")
	flags.String("server-name", jira.DefaultServerName, "Name under which the configured server is registered")
	flags.String("log-file", "", "Optional: Path to write log output to a file")
	flags.String("log-level", "info", "Log level (e.g., debug, info, warn, error)")
	flags.Bool("enable-command-logging", false, "Log all MCP JSON-RPC requests/responses to the logger (tokens are redacted)")
	flags.Bool("export-translations", false, "Generate jira-mcp-server-config.json with all translation keys and exit")
	flags.Bool("dynamic-toolsets", false, "Enable dynamic toolset discovery (toolsets loaded on-demand)")

	// Viper key -> env var: "host" -> JIRA_HOST, "log.level" -> JIRA_LOG_LEVEL, ...
	_ = viper.BindPFlag("toolsets", flags.Lookup("toolsets"))
	_ = viper.BindPFlag("read-only", flags.Lookup("read-only"))
	_ = viper.BindPFlag("host", flags.Lookup("jira-host"))
	_ = viper.BindPFlag("email", flags.Lookup("jira-email"))
	_ = viper.BindPFlag("api-token", flags.Lookup("jira-api-token"))
	_ = viper.BindPFlag("bearer-token", flags.Lookup("jira-bearer-token"))
	_ = viper.BindPFlag("server-name", flags.Lookup("server-name"))
	_ = viper.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("enable-command-logging", flags.Lookup("enable-command-logging"))
	_ = viper.BindPFlag("export-translations", flags.Lookup("export-translations"))
	_ = viper.BindPFlag("dynamic-toolsets", flags.Lookup("dynamic-toolsets"))

	rootCmd.AddCommand(stdioCmd, fieldsCmd, loginCmd)
}

// initConfig loads .env files and binds JIRA_* environment variables.
func initConfig() {
	loadEnvFiles(envFiles...)
	configureViper(viper.GetViper())
}

func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("JIRA")
	// "log.level" and "read-only" map to JIRA_LOG_LEVEL and JIRA_READ_ONLY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// loadEnvFiles reads dotenv files that exist. gotenv.Load keeps variables that
// are already present in the environment.
func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := gotenv.Load(p); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", p, err)
		}
	}
}

// initLogger sets up the logrus logger based on configuration.
// Stdout carries the protocol, so logs go to stderr or a file.
func initLogger(level string, filePath string) (*log.Logger, error) {
	logger := log.New()

	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to 'info': %v", level, err)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", filePath, err)
		}
		logger.SetOutput(file)
	} else {
		logger.SetOutput(os.Stderr)
	}

	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	return logger, nil
}

// tokenLoader reads a token stored for a host, normally from the OS keyring.
type tokenLoader func(host string) (string, error)

// connectionFromConfig builds the startup connection settings. A bearer token
// wins over email plus API token; with neither, the keyring entry stored by
// `login` for the host is used.
func connectionFromConfig(v *viper.Viper, load tokenLoader) (jira.ConnectionConfig, error) {
	host := v.GetString("host")
	if host == "" {
		return jira.ConnectionConfig{}, errors.New("required configuration missing: JIRA_HOST (or --jira-host) must be set")
	}
	email := v.GetString("email")

	if token := v.GetString("bearer-token"); token != "" {
		return jira.ConnectionConfig{Host: host, Token: credentials.NewSecret(token), Scheme: credentials.AuthBearer}, nil
	}
	if token := v.GetString("api-token"); token != "" {
		if email == "" {
			return jira.ConnectionConfig{}, errors.New("JIRA_EMAIL (or --jira-email) is required with JIRA_API_TOKEN")
		}
		return jira.ConnectionConfig{Host: host, Email: email, Token: credentials.NewSecret(token), Scheme: credentials.AuthBasic}, nil
	}

	token, err := load(host)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return jira.ConnectionConfig{}, fmt.Errorf("no token configured for %s: set JIRA_API_TOKEN or JIRA_BEARER_TOKEN, or run 'jira-mcp-server login'", host)
		}
		return jira.ConnectionConfig{}, err
	}
	scheme := credentials.AuthBearer
	if email != "" {
		scheme = credentials.AuthBasic
	}
	return jira.ConnectionConfig{Host: host, Email: email, Token: credentials.NewSecret(token), Scheme: scheme}, nil
}

// enabledToolsets reads the toolsets key. Environment values arrive as one
// comma-separated string.
func enabledToolsets(v *viper.Viper) []string {
	var out []string
	for _, raw := range v.GetStringSlice("toolsets") {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	if len(out) == 0 {
		return jira.DefaultTools
	}
	return out
}

func runStdio(logger *log.Logger) error {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	t, dumpTranslations := translations.TranslationHelper(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverName := viper.GetString("server-name")
	if serverName == "" {
		serverName = jira.DefaultServerName
	}
	keyring := credentials.NewKeyring()
	notifier := jira.NewNotifier(logger)
	pool := jira.NewClientPool(jira.NewServerStore(), nil, logger)
	resolver := jira.NewClientResolver(pool, serverName, logger)
	readOnly := viper.GetBool("read-only")
	dynamic := viper.GetBool("dynamic-toolsets")
	toolsetNames := enabledToolsets(viper.GetViper())

	toolsetGroup, err := jira.InitToolsets(toolsetNames, readOnly, jira.ToolDeps{
		GetClient: resolver.GetClientFn(),
		Pool:      pool,
		Notifier:  notifier,
		Tokens:    keyring,
		T:         t,
		Logger:    logger,
	}, dynamic)
	if err != nil {
		return fmt.Errorf("failed to initialize toolsets: %w", err)
	}

	// Tool descriptions are collected while the tools are built.
	if viper.GetBool("export-translations") {
		logger.Info("Exporting translations and exiting...")
		dumpTranslations()
		return nil
	}

	cfg, err := connectionFromConfig(viper.GetViper(), keyring.Load)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"toolsets": toolsetNames,
		"readOnly": readOnly,
		"dynamic":  dynamic,
		"auth":     cfg.Scheme,
	}).Info("Configuration loaded")

	client, _, err := pool.InitializeFromConfig(serverName, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Jira client: %w", err)
	}
	validateOnStartup(ctx, pool, notifier, serverName, client, logger)

	mcpServer := jira.NewServer("jira-mcp-server", version)
	if dynamic {
		jira.NewDynamicToolsetManager(toolsetGroup, mcpServer, logger).RegisterDiscoveryTools(t)
		logger.Info("Dynamic toolset discovery tools registered")
	} else {
		toolsetGroup.RegisterTools(mcpServer)
		logger.Info("Toolsets registered with MCP server")
	}

	stdioServer := server.NewStdioServer(mcpServer)
	stdioServer.SetErrorLogger(stdlog.New(logger.Writer(), "[StdioServer] ", 0))

	errC := make(chan error, 1)
	go func() {
		in, out := io.Reader(os.Stdin), io.Writer(os.Stdout)
		if viper.GetBool("enable-command-logging") {
			logger.Warn("Command logging enabled - tokens are redacted but other data is logged as is")
			loggedIO := iolog.NewIOLogger(in, out, logger)
			in, out = loggedIO, loggedIO
		}
		errC <- stdioServer.Listen(ctx, in, out)
	}()

	fmt.Fprintf(os.Stderr, "Jira MCP Server running on stdio (Version: %s, Commit: %s)\n", version, commit)

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, context cancelled.")
	case err := <-errC:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("Server encountered an error: %v", err)
		} else {
			logger.Info("Server listener stopped gracefully.")
		}
	}

	logger.Info("Server shutting down.")
	return nil
}

// validateOnStartup checks the configured token once. Failures are reported
// but do not stop the server; the agent can fix the token with update_server_token.
func validateOnStartup(ctx context.Context, pool *jira.ClientPool, notifier *jira.Notifier, name string, client jira.Client, logger *log.Logger) {
	md, err := pool.Store().ValidateServer(ctx, name, client)
	switch {
	case errors.Is(err, jira.ErrUnauthorized):
		notifier.Send(jira.Notification{
			Level:      jira.NotificationError,
			Title:      "Token Invalid",
			Message:    fmt.Sprintf("The API token for server '%s' was rejected (401). Create a new token and update it with update_server_token.", name),
			ServerName: name,
		})
	case err != nil:
		notifier.Send(jira.Notification{
			Level:      jira.NotificationWarning,
			Title:      "Server Issue Detected",
			Message:    fmt.Sprintf("Server '%s' could not be validated: %v", name, err),
			ServerName: name,
		})
	default:
		logger.WithFields(log.Fields{"server": name, "account": md.AccountID}).
			Infof("Token validated for %s", md.DisplayName)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
