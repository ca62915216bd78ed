package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: influence
nodes:
  - {id: "1", name: "Dr. Sarah Chen", category: Oncology, influence_score: 95, kol: true}
  - {id: "2", name: "Dr. Michael Rodriguez", category: Cardiology, influence_score: 87, kol: true}
  - {id: "3", name: "Dr. Emily Johnson", category: Oncology, influence_score: 72}
edges:
  - {source: "1", target: "2", strength: 0.8, type: research}
  - {source: "2", target: "3", strength: 0.4}
  - {source: "3", target: "99", strength: 0.2}
`

const sampleJSON = `{
  "name": "influence",
  "nodes": [
    {"id": "1", "name": "Dr. Sarah Chen", "category": "Oncology", "influence_score": 95, "kol": true},
    {"id": "2", "name": "Dr. Michael Rodriguez", "category": "Cardiology", "influence_score": 87}
  ],
  "edges": [
    {"source": "1", "target": "2", "strength": 0.8, "type": "research"}
  ]
}`

func TestYAMLProcessor(t *testing.T) {
	network, err := NewYAMLProcessor().ProcessData([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "influence", network.Name)
	assert.NotEmpty(t, network.ID)
	assert.False(t, network.CreatedAt.IsZero())
	require.Len(t, network.Nodes, 3)
	assert.True(t, network.Nodes[0].KOL)
	assert.Equal(t, 95.0, network.Nodes[0].InfluenceScore)

	// Dangling edges survive ingest
	require.Len(t, network.Edges, 3)
	assert.Equal(t, "99", network.Edges[2].Target)
	for _, e := range network.Edges {
		assert.NotEmpty(t, e.ID)
	}
}

func TestJSONProcessor(t *testing.T) {
	network, err := NewJSONProcessor().ProcessData([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "influence", network.Name)
	require.Len(t, network.Nodes, 2)
	require.Len(t, network.Edges, 1)
	assert.Equal(t, "research", network.Edges[0].Type)
	assert.Equal(t, 0.8, network.Edges[0].Strength)
}

func TestProcessorDefaultsName(t *testing.T) {
	network, err := NewJSONProcessor().ProcessData([]byte(`{"nodes":[{"id":"a","name":"A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "JSON Import", network.Name)
}

func TestProcessorRejectsMalformed(t *testing.T) {
	_, err := NewJSONProcessor().ProcessData([]byte(`{"nodes": [`))
	assert.ErrorContains(t, err, "error parsing JSON")

	_, err = NewYAMLProcessor().ProcessData([]byte("nodes: [oops"))
	assert.ErrorContains(t, err, "error parsing YAML")
}

func TestValidationErrorListsEveryField(t *testing.T) {
	doc := `
nodes:
  - {id: "1", name: "", influence_score: 140}
  - {id: "1", name: "Twin"}
edges:
  - {source: "", target: "1", strength: -1}
`
	_, err := NewYAMLProcessor().ProcessData([]byte(doc))
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make([]string, len(verr.Errors))
	for i, fe := range verr.Errors {
		fields[i] = fe.Field
	}
	assert.Contains(t, fields, "Network.Nodes[0].Name")
	assert.Contains(t, fields, "Network.Nodes[0].InfluenceScore")
	assert.Contains(t, fields, "Network.Edges[0].Source")
	assert.Contains(t, fields, "Network.Edges[0].Strength")
	assert.Contains(t, fields, "Network.Nodes[1].ID")
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestGetProcessor(t *testing.T) {
	tests := []struct {
		format string
		name   string
	}{
		{"json", "JSON Processor"},
		{"JSON", "JSON Processor"},
		{"yaml", "YAML Processor"},
		{"yml", "YAML Processor"},
		{"csv", "CSV Processor"},
	}
	for _, tt := range tests {
		p, err := GetProcessor(tt.format)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.name, p.GetName())
	}

	_, err := GetProcessor("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "net.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0644))
	network, err := ProcessFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, network.Nodes, 3)

	jsonPath := filepath.Join(dir, "net.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0644))
	network, err = ProcessFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, network.Nodes, 2)

	_, err = ProcessFile(filepath.Join(dir, "net.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ProcessFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessFileWrapsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`nodes: [{id: "1"}]`), 0644))

	_, err := ProcessFile(path)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "bad.yaml")
}
