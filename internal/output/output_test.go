package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vecTable struct {
	Name  string    `json:"name" yaml:"name"`
	Value []float64 `json:"value" yaml:"value"`
}

func (v vecTable) Headers() []string { return []string{"name", "value"} }
func (v vecTable) Rows() [][]string {
	return [][]string{{v.Name, Float(v.Value[0])}}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, " yaml ": FormatYAML, "table": FormatTable} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	payload := vecTable{Name: "east", Value: []float64{0.25}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, payload))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"name", "value"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"east", "0.250000"}, strings.Fields(lines[1]))

	buf.Reset()
	require.NoError(t, Render(&buf, FormatJSON, payload))
	assert.Contains(t, buf.String(), `"name": "east"`)

	buf.Reset()
	require.NoError(t, Render(&buf, FormatYAML, payload))
	assert.Contains(t, buf.String(), "name: east")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatTable, map[string]int{"n": 3}))
	assert.Equal(t, "n: 3\n", buf.String())
}
