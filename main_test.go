package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TFMV/kolgraph/config"
	"github.com/TFMV/kolgraph/fixtures"
)

// execute runs the root command with args after resetting every flag, since
// cobra commands and their flag targets are package globals
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestFixturesCommand(t *testing.T) {
	out, err := execute(t, "fixtures")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	for _, name := range fixtures.Names() {
		assert.Contains(t, out, name)
	}
	assert.Regexp(t, `influence\s+influence\s+8\s+10\s+3\s+Oncology, Cardiology, Neurology, Endocrinology`, out)
}

func TestRenderASCIIToStdout(t *testing.T) {
	out, err := execute(t, "render", "--fixture", "influence", "--format", "ascii",
		"--steps", "20", "--seed", "7", "-o", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "+---")
	assert.Contains(t, out, "@")
}

func TestRenderJSONFromFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "hcps.csv")
	require.NoError(t, os.WriteFile(data, []byte(strings.Join([]string{
		"kind,id,name,category,score,kol,from,to,weight",
		"node,a,Dr. A,Oncology,90,true,,,",
		"node,b,Dr. B,Oncology,40,false,,,",
		"edge,,,,,,a,b,0.5",
	}, "\n")), 0644))

	output := filepath.Join(dir, "layout.json")
	_, err := execute(t, "render", "--data", data, "--format", "json",
		"--steps", "10", "--seed", "3", "--width", "300", "--height", "200", "-o", output)
	require.NoError(t, err)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var scene struct {
		Tick   uint64          `json:"tick"`
		Width  float64         `json:"width"`
		Height float64         `json:"height"`
		Nodes  []map[string]any `json:"nodes"`
		Edges  []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(raw, &scene))
	assert.Equal(t, uint64(10), scene.Tick)
	assert.Equal(t, 300.0, scene.Width)
	assert.Equal(t, 200.0, scene.Height)
	assert.Len(t, scene.Nodes, 2)
	assert.Len(t, scene.Edges, 1)
}

func TestRenderRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"render", "--format", "png", "-o", "-"}, "unsupported output format"},
		{"both sources", []string{"render", "--fixture", "influence", "--data", "x.json", "-o", "-"}, "mutually exclusive"},
		{"fixture", []string{"render", "--fixture", "nope", "-o", "-"}, "unknown fixture"},
		{"steps", []string{"render", "--steps", "-1", "-o", "-"}, "--steps"},
		{"viewport", []string{"render", "--width", "-5", "-o", "-"}, "viewport"},
		{"args", []string{"render", "extra"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kolgraph.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Physics, loaded.Physics)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "viewport:")
	assert.Contains(t, out, "max_sessions: 64")
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop:\n  fps: 0\n"), 0644))

	_, err := execute(t, "--config", path, "fixtures")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "svg", extension("svg"))
	assert.Equal(t, "txt", extension("ascii"))
	assert.Equal(t, "txt", extension("text"))
	assert.Equal(t, "html", extension("html"))
}

func TestReportErrorLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var stderr bytes.Buffer

	reportError(&stderr, zap.New(core), errSourceConflict)

	assert.Empty(t, stderr.String())
	entries := logs.FilterMessage("Command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, errSourceConflict.Error(), entries[0].ContextMap()["error"])
}

func TestReportErrorWithoutLogger(t *testing.T) {
	var stderr bytes.Buffer
	reportError(&stderr, nil, errSourceConflict)
	assert.Equal(t, "Error: "+errSourceConflict.Error()+"\n", stderr.String())
}
