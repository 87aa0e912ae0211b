package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
	"github.com/InkyQuill/jira-mcp-server/pkg/jira"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the Jira field catalog",
	Long:  `Fetches the field catalog of the configured Jira instance and prints it as JSON or YAML.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		customOnly, _ := cmd.Flags().GetBool("custom-only")
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unsupported format %q (use json or yaml)", format)
		}

		logger, err := initLogger(viper.GetString("log.level"), viper.GetString("log.file"))
		if err != nil {
			return err
		}
		cfg, err := connectionFromConfig(viper.GetViper(), credentials.NewKeyring().Load)
		if err != nil {
			return err
		}
		client, err := jira.NewClient(cfg)
		if err != nil {
			return err
		}

		mapper := fieldmap.New(jira.FieldSource{Client: client}, fieldmap.WithLogger(logger))
		var fields []fieldmap.Field
		if customOnly {
			fields, err = mapper.GetCustomFields(cmd.Context())
		} else {
			fields, err = mapper.GetAllFields(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to fetch fields from %s: %w", client.BaseURL(), err)
		}
		return writeFields(os.Stdout, fields, format)
	},
}

func init() {
	fieldsCmd.Flags().String("format", "json", "Output format: json or yaml")
	fieldsCmd.Flags().Bool("custom-only", false, "Only print custom fields")
}

func writeFields(w io.Writer, fields []fieldmap.Field, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fields); err != nil {
			return fmt.Errorf("failed to encode fields as YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fields); err != nil {
			return fmt.Errorf("failed to encode fields as JSON: %w", err)
		}
		return nil
	}
}
