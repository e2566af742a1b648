package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/tabload/pkg/tabload"
)

var (
	ColorPrimary = lipgloss.Color("39")  // Blue
	ColorMuted   = lipgloss.Color("240") // Dark gray

	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
	BorderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Render writes rs to w in the given format.
func Render(w io.Writer, format Format, rs tabload.RecordSet) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(w, renderTable(rs))
		return err
	case FormatJSON:
		return writeJSONLine(w, orderedJSON(rs))
	case FormatYAML:
		return writeYAML(w, recordsNode(rs))
	case FormatCSV:
		return writeCSV(w, rs)
	default:
		return fmt.Errorf("unknown output format %q: %w", format, tabload.ErrInvalidConfig)
	}
}

// RenderNamed writes rs labelled with name, for output covering several files.
func RenderNamed(w io.Writer, format Format, name string, rs tabload.RecordSet) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintf(w, "%s\n%s\n", TitleStyle.Render(name), renderTable(rs))
		return err
	case FormatJSON:
		var buf bytes.Buffer
		buf.WriteString(`{"path":`)
		writeJSONString(&buf, name)
		buf.WriteString(`,"records":`)
		buf.Write(orderedJSON(rs))
		buf.WriteByte('}')
		return writeJSONLine(w, buf.Bytes())
	case FormatYAML:
		doc := &yaml.Node{Kind: yaml.MappingNode}
		doc.Content = append(doc.Content,
			scalar("path"), scalar(name),
			scalar("records"), recordsNode(rs),
		)
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		return writeYAML(w, doc)
	case FormatCSV:
		if _, err := fmt.Fprintf(w, "# %s\n", name); err != nil {
			return err
		}
		return writeCSV(w, rs)
	default:
		return fmt.Errorf("unknown output format %q: %w", format, tabload.ErrInvalidConfig)
	}
}

func renderTable(rs tabload.RecordSet) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		}).
		Headers(rs.Fields...).
		Rows(rs.Rows()...)
	return t.Render()
}

// orderedJSON encodes records as objects whose keys follow rs.Fields.
// encoding/json sorts map keys, so objects are assembled by hand.
func orderedJSON(rs tabload.RecordSet) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range rs.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, f := range uniqueFields(rs.Fields) {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(&buf, f)
			buf.WriteByte(':')
			writeJSONString(&buf, rec[f])
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func writeJSONLine(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func recordsNode(rs tabload.RecordSet) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	fields := uniqueFields(rs.Fields)
	for _, rec := range rs.Records {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range fields {
			m.Content = append(m.Content, scalar(f), scalar(rec[f]))
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

// scalar builds a string node; the !!str tag keeps values like "10001" or
// "yes" quoted so they round-trip as strings.
func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func writeYAML(w io.Writer, node *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func writeCSV(w io.Writer, rs tabload.RecordSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Fields); err != nil {
		return err
	}
	if err := cw.WriteAll(rs.Rows()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// uniqueFields drops repeated header names; a Record holds one value per name.
func uniqueFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
