package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func outputFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("output")
	if err != nil || format == "" {
		return formatText
	}
	return format
}

func validateOutputFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want text, json or yaml)", format)
	}
}

// writeOutput prints value in the selected format. text renders the human
// view and is only called in text mode.
func writeOutput(cmd *cobra.Command, value any, text func() string) error {
	out := cmd.OutOrStdout()

	switch outputFormat(cmd) {
	case formatJSON:
		return writeJSON(out, value)
	case formatYAML:
		return writeYAML(out, value)
	default:
		_, err := fmt.Fprintln(out, text())
		return err
	}
}

func writeJSON(out io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

// writeYAML goes through JSON first so field names match the API payloads.
func writeYAML(out io.Writer, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode yaml output: %w", err)
	}

	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return fmt.Errorf("encode yaml output: %w", err)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode yaml output: %w", err)
	}
	return enc.Close()
}
