package base

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatVar registers the -format flag.
func (f *FlagSet) FormatVar(p *string) {
	f.StringVar(p, "format", FormatJSON, `Output format: "json" or "yaml".`)
}

// Print writes v to the UI in the given format.
func (c *Command) Print(format string, v any) error {
	out, err := Render(format, v)
	if err != nil {
		return err
	}
	c.UI.Output(out)
	return nil
}

// Render encodes v as indented JSON or YAML.
func Render(format string, v any) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("error encoding JSON: %w", err)
		}
		return string(data), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("error encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("error encoding YAML: %w", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil

	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}
