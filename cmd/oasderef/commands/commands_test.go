package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasderef/element"
)

const petstore = `openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0.0"
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - $ref: "#/components/parameters/Limit"
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  parameters:
    Limit:
      name: limit
      in: query
      schema:
        type: integer
  schemas:
    Named:
      type: object
      properties:
        name:
          type: string
    Pet:
      allOf:
        - $ref: "#/components/schemas/Named"
        - properties:
            id:
              type: integer
`

// execute runs the command line with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func responseSchema(root *element.Element) *element.Element {
	return root.Get("paths").Get("/pets").Get("get").Get("responses").Get("200").
		Get("content").Get("application/json").Get("schema")
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "oasderef version ")
}

func TestDerefCmd_JSON(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", petstore)

	stdout, stderr, err := execute(t, "deref", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	root, err := element.Decode([]byte(stdout), "stdout")
	require.NoError(t, err)
	assert.Equal(t, []string{"openapi", "info", "paths", "components"}, root.Keys())

	schema := responseSchema(root)
	assert.False(t, schema.Has("allOf"))
	assert.Equal(t, []string{"name", "id"}, schema.Get("properties").Keys())

	param := root.Get("paths").Get("/pets").Get("get").Get("parameters").Index(0)
	name, _ := param.GetString("name")
	assert.Equal(t, "limit", name)
}

func TestDerefCmd_YAMLOutputFile(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", petstore)
	out := filepath.Join(t.TempDir(), "flat.yaml")

	stdout, _, err := execute(t, "deref", "--format", "yaml", "--output", out, "--allow-meta-patches", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	root, err := element.Decode(data, out)
	require.NoError(t, err)
	origin, ok := responseSchema(root).GetString("$$ref")
	require.True(t, ok)
	assert.Equal(t, path+"#/components/schemas/Pet", origin)
}

func TestDerefCmd_StrictMode(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", petstore)

	stdout, _, err := execute(t, "deref", "--mode", "strict", path)
	require.NoError(t, err)

	root, err := element.Decode([]byte(stdout), "stdout")
	require.NoError(t, err)
	assert.True(t, responseSchema(root).Has("allOf"))
}

func TestDerefCmd_NoInternal(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", petstore)

	stdout, _, err := execute(t, "deref", "--no-internal", "--mode", "strict", path)
	require.NoError(t, err)

	root, err := element.Decode([]byte(stdout), "stdout")
	require.NoError(t, err)
	ref, _ := responseSchema(root).GetString("$ref")
	assert.Equal(t, "#/components/schemas/Pet", ref)
}

func TestDerefCmd_ConfigFile(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", petstore)
	config := writeSpec(t, "oasderef.toml", "mode = \"strict\"\n")

	stdout, _, err := execute(t, "deref", "--config", config, path)
	require.NoError(t, err)
	root, err := element.Decode([]byte(stdout), "stdout")
	require.NoError(t, err)
	assert.True(t, responseSchema(root).Has("allOf"))

	// Flags win over the file.
	stdout, _, err = execute(t, "deref", "--config", config, "--mode", "default", path)
	require.NoError(t, err)
	root, err = element.Decode([]byte(stdout), "stdout")
	require.NoError(t, err)
	assert.False(t, responseSchema(root).Has("allOf"))
}

func TestDerefCmd_CollectedErrors(t *testing.T) {
	spec := `openapi: "3.0.3"
info:
  title: Broken
  version: "1.0.0"
paths:
  /pets:
    get:
      parameters:
        - $ref: "#/components/parameters/Missing"
      responses:
        "200":
          description: OK
`
	path := writeSpec(t, "openapi.yaml", spec)

	stdout, stderr, err := execute(t, "deref", path)
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
	assert.Contains(t, stderr, "UnresolvableReference")
	assert.Contains(t, stderr, "/paths/~1pets/get/parameters/0/$ref")
	assert.Contains(t, stderr, "1 error(s) collected")

	_, _, err = execute(t, "deref", "--fail-on-errors", path)
	assert.ErrorIs(t, err, ErrCollected)
}

func TestDerefCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", []string{"deref"}},
		{"bad format", []string{"deref", "--format", "xml", "openapi.yaml"}},
		{"bad mode", []string{"deref", "--mode", "lenient", writeSpec(t, "openapi.yaml", petstore)}},
		{"missing file", []string{"deref", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"missing config", []string{"deref", "--config", filepath.Join(t.TempDir(), "missing.toml"), "openapi.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDerefCmd_WatchRequiresLocalFile(t *testing.T) {
	_, _, err := execute(t, "deref", "--watch", "https://example.com/openapi.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires a local file")
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestDerefCmd_WatchStopsWithContext(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", petstore)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := newRootCmd()
	stdout := new(syncBuffer)
	cmd.SetOut(stdout)
	cmd.SetErr(new(syncBuffer))
	cmd.SetArgs([]string{"deref", "--watch", path})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool { return stdout.Len() > 0 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
