package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents command output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates format values.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", v)
	}
}

// Table is implemented by payloads with a tabular rendering.
type Table interface {
	Headers() []string
	Rows() [][]string
}

// Render writes payload to w in the requested format. Payloads that do not
// implement Table fall back to YAML for the table format.
func Render(w io.Writer, format Format, payload any) error {
	switch format {
	case FormatJSON:
		bytes, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(bytes))
		return err
	case FormatYAML:
		return renderYAML(w, payload)
	default:
		t, ok := payload.(Table)
		if !ok {
			return renderYAML(w, payload)
		}
		return RenderTable(w, t.Headers(), t.Rows())
	}
}

func renderYAML(w io.Writer, payload any) error {
	bytes, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(bytes)
	return err
}

// RenderTable writes tab-aligned columns.
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Float formats v for table cells.
func Float(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
