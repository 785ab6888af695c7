package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

const cachedProto = `syntax = "proto3";

package example.library.v1;

message Shelf {
  string name = 1;
}
`

func TestCachingLoaderReusesParsedSchemas(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.proto")
	require.NoError(t, os.WriteFile(path, []byte(cachedProto), 0644))

	loader := NewCachingLoader(protomodel.NewLoader(nil), 16, time.Minute, nil)

	schemas, parseErrs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, schemas, 1)

	again, _, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Same(t, schemas[0], again[0], "unchanged file should come from cache")
}

func TestCachingLoaderReparsesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.proto")
	require.NoError(t, os.WriteFile(path, []byte(cachedProto), 0644))

	loader := NewCachingLoader(protomodel.NewLoader(nil), 16, time.Minute, nil)

	schemas, _, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	require.Len(t, schemas[0].Messages, 1)

	updated := cachedProto[:len(cachedProto)-2] + "  int32 capacity = 2;\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	again, parseErrs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, again, 1)
	assert.NotSame(t, schemas[0], again[0])
	assert.Len(t, again[0].Messages[0].Fields, 2)
}

func TestCachingLoaderCollectsParseErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.proto"), []byte(cachedProto), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.proto"),
		[]byte("syntax = \"proto3\";\nmessage Broken {\n"), 0644))

	loader := NewCachingLoader(protomodel.NewLoader(nil), 16, time.Minute, nil)

	schemas, parseErrs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	require.Len(t, parseErrs, 1)
	assert.Contains(t, parseErrs[0].File, "bad.proto")
}
