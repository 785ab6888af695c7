package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/checker/rules"
	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

const libraryProto = `syntax = "proto3";

package example.library.v1;

import "google/longrunning/operations.proto";

service LibraryService {
  rpc WriteBook(WriteBookRequest) returns (google.longrunning.Operation);
}

message WriteBookRequest {
  string name = 1;
}

message Book {
  string name = 1;
  string revision_id = 2;
}
`

func TestCheckOnceEndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.proto"), []byte(libraryProto), 0644))

	opts := checkOptions{path: dir, format: "text"}
	config := checker.DefaultConfig()
	engine := checker.NewEngine(config)
	rules.RegisterDefaultRules(engine.Registry())
	selected := engine.Registry().Enabled(config)

	log := newLogger(false)
	rep, err := checkOnce(context.Background(), opts, engine, selected, newOnceLoader(protomodel.NewLoader(log)), log)
	require.NoError(t, err)

	byRule := map[string]int{}
	for _, f := range rep.Findings {
		byRule[f.Rule]++
	}

	// WriteBook returns Operation without operation_info: exactly one error.
	assert.Equal(t, 1, byRule["LRO-RESPONSE-TYPE"])
	// Book has revision_id but no revision_create_time: exactly one error.
	assert.Equal(t, 1, byRule["REVISION-FIELDS-PRESENT"])
	// revision_id is not OUTPUT_ONLY: one warning.
	assert.Equal(t, 1, byRule["REVISION-FIELDS-OUTPUT-ONLY"])

	assert.Equal(t, 2, rep.Summary.Errors)
	assert.Equal(t, 1, rep.ExitCode(false))
}
