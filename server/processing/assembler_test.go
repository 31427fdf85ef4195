package processing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/promptgate/promptgate/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeResource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestAssembler(t *testing.T, dir string) *Assembler {
	t.Helper()
	loader := NewResourceLoader(config.ResourceConfig{Dir: dir}, zap.NewNop())
	t.Cleanup(func() { loader.Close() })
	return NewAssembler(loader, zap.NewNop())
}

func TestAssembleFullComposite(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "context.json", `[{"info":"A"},{"info":"B"}]`)
	writeResource(t, dir, "guardrail.json", `{"prompt":"G"}`)

	a := newTestAssembler(t, dir)

	assert.Equal(t, "G\n---\nA\nB\n---\nP", a.Assemble("P"))
}

func TestAssemblePromptOnlyWhenResourcesMissing(t *testing.T) {
	a := newTestAssembler(t, t.TempDir())

	assert.Equal(t, "P", a.Assemble("P"))
}

func TestAssembleDegradesOnMalformedResources(t *testing.T) {
	tests := []struct {
		name      string
		context   string
		guardrail string
		want      string
	}{
		{
			name:      "both malformed",
			context:   `{not json`,
			guardrail: `[]`,
			want:      "P",
		},
		{
			name:      "context malformed, guardrail intact",
			context:   `"not an array"`,
			guardrail: `{"prompt":"G"}`,
			want:      "G\n---\nP",
		},
		{
			name:      "guardrail malformed, context intact",
			context:   `[{"info":"A"}]`,
			guardrail: `not json`,
			want:      "A\n---\nP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeResource(t, dir, "context.json", tt.context)
			writeResource(t, dir, "guardrail.json", tt.guardrail)

			a := newTestAssembler(t, dir)

			assert.Equal(t, tt.want, a.Assemble("P"))
		})
	}
}

func TestAssembleSkipsEmptyMembers(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "context.json", `[{"info":"A"},{"info":"B"}]`)
	writeResource(t, dir, "guardrail.json", `{"prompt":""}`)

	a := newTestAssembler(t, dir)

	// An empty guardrail contributes no leading separator.
	assert.Equal(t, "A\nB\n---\nP", a.Assemble("P"))
}

func TestResourceLoaderReadsFreshPerCall(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "guardrail.json", `{"prompt":"first"}`)

	loader := NewResourceLoader(config.ResourceConfig{Dir: dir}, zap.NewNop())
	defer loader.Close()

	assert.Equal(t, "first", loader.Guardrail())

	writeResource(t, dir, "guardrail.json", `{"prompt":"second"}`)
	assert.Equal(t, "second", loader.Guardrail())
}

func TestResourceLoaderEmptyValues(t *testing.T) {
	loader := NewResourceLoader(config.ResourceConfig{Dir: t.TempDir()}, zap.NewNop())
	defer loader.Close()

	assert.Empty(t, loader.Context())
	assert.Equal(t, "", loader.Guardrail())
}

func TestResourceLoaderCacheServesLoadedValues(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "context.json", `[{"info":"A"}]`)
	writeResource(t, dir, "guardrail.json", `{"prompt":"G"}`)

	loader := NewResourceLoader(config.ResourceConfig{Dir: dir, CacheEnabled: true}, zap.NewNop())
	defer loader.Close()

	require.Len(t, loader.Context(), 1)
	assert.Equal(t, "A", loader.Context()[0].Info)
	assert.Equal(t, "G", loader.Guardrail())
}

func TestResourceLoaderCacheFallsBackWithoutDirectory(t *testing.T) {
	// Watcher setup fails for a missing directory; the loader must fall
	// back to per-request reads instead of failing.
	loader := NewResourceLoader(config.ResourceConfig{Dir: filepath.Join(t.TempDir(), "missing"), CacheEnabled: true}, zap.NewNop())
	defer loader.Close()

	assert.Empty(t, loader.Context())
	assert.Equal(t, "", loader.Guardrail())
}
