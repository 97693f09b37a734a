package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const furnitureEntries = `[
  {"kind":"create","timestamp":1000,"signature":"ana","data":{"stage":"draft","finished":false}},
  {"kind":"patch","timestamp":1100,"signature":"ana","data":{"stage":"painting"}},
  {"kind":"patch","timestamp":1200,"data":{"finished":true}}
]`

const furnitureCompiled = `{
  "finished": true,
  "history": [
    {"kind":"create","timestamp":1000,"signature":"ana","data":{"finished":false,"stage":"draft"}},
    {"kind":"patch","timestamp":1100,"signature":"ana","data":{"stage":"painting"}},
    {"kind":"patch","timestamp":1200,"data":{"finished":true}}
  ],
  "stage": "painting"
}`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses a JSON CLIResponse and decodes its data into dst.
func decodeResponse(t *testing.T, out string, dst any) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	if dst != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, dst))
	}
	return resp.CLIResponse
}
