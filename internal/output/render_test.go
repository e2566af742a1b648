package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/tabload/pkg/tabload"
)

var sample = tabload.RecordSet{
	Fields: []string{"Name", "Zip"},
	Records: []tabload.Record{
		{"Name": "Alice", "Zip": "10001"},
		{"Name": "Bob", "Zip": "94105"},
	},
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sample))

	assert.Equal(t, `[{"Name":"Alice","Zip":"10001"},{"Name":"Bob","Zip":"94105"}]`+"\n", buf.String())

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "94105", decoded[1]["Zip"])
}

func TestRender_JSON_KeepsHeaderOrder(t *testing.T) {
	rs := tabload.RecordSet{
		Fields:  []string{"zeta", "alpha"},
		Records: []tabload.Record{{"zeta": "1", "alpha": "2"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, rs))
	assert.Equal(t, `[{"zeta":"1","alpha":"2"}]`+"\n", buf.String())
}

func TestRender_JSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, tabload.RecordSet{Fields: []string{"a"}}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sample))

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []map[string]string{
		{"Name": "Alice", "Zip": "10001"},
		{"Name": "Bob", "Zip": "94105"},
	}, decoded)

	out := buf.String()
	assert.Less(t, strings.Index(out, "Name"), strings.Index(out, "Zip"))
}

func TestRender_YAML_NumericLookingValuesStayStrings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sample))

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "10001", decoded[0]["Zip"])
}

func TestRender_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatCSV, sample))
	assert.Equal(t, "Name,Zip\nAlice,10001\nBob,94105\n", buf.String())
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, sample))

	out := buf.String()
	for _, want := range []string{"Name", "Zip", "Alice", "10001", "Bob", "94105"} {
		assert.Contains(t, out, want)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, Format("xml"), sample)
	assert.True(t, errors.Is(err, tabload.ErrInvalidConfig))
}

func TestRenderNamed_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderNamed(&buf, FormatJSON, "exports/q1.csv", sample))

	var decoded struct {
		Path    string              `json:"path"`
		Records []map[string]string `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "exports/q1.csv", decoded.Path)
	assert.Len(t, decoded.Records, 2)
}

func TestRenderNamed_YAML_MultipleDocuments(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderNamed(&buf, FormatYAML, "a.csv", sample))
	require.NoError(t, RenderNamed(&buf, FormatYAML, "b.csv", sample))

	dec := yaml.NewDecoder(&buf)
	var paths []string
	for {
		var doc struct {
			Path    string              `yaml:"path"`
			Records []map[string]string `yaml:"records"`
		}
		if err := dec.Decode(&doc); err != nil {
			break
		}
		paths = append(paths, doc.Path)
		assert.Len(t, doc.Records, 2)
	}
	assert.Equal(t, []string{"a.csv", "b.csv"}, paths)
}

func TestRenderNamed_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderNamed(&buf, FormatCSV, "a.csv", sample))

	r := csv.NewReader(&buf)
	r.Comment = '#'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Zip"}, {"Alice", "10001"}, {"Bob", "94105"}}, rows)
}

func TestRenderNamed_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderNamed(&buf, FormatTable, "a.csv", sample))
	assert.Contains(t, buf.String(), "a.csv")
	assert.Contains(t, buf.String(), "Alice")
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"table", "JSON", " yaml ", "csv"} {
		f, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, Format(strings.ToLower(strings.TrimSpace(name))), f)
	}

	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, tabload.ErrInvalidConfig))
}

func TestDefaultFormat_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, FormatCSV, DefaultFormat(f))
	assert.Equal(t, FormatCSV, DefaultFormat(nil))
}

func TestDefaultFormat_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, FormatCSV, DefaultFormat(os.Stdout))
}
