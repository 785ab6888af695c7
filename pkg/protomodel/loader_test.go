package protomodel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const librarySample = `syntax = "proto3";

package test.library.v1;

import "google/api/field_behavior.proto";
import "google/longrunning/operations.proto";
import "google/protobuf/timestamp.proto";

service LibraryService {
  rpc WriteBook(WriteBookRequest) returns (google.longrunning.Operation) {
    option (google.longrunning.operation_info) = {
      response_type: "WriteBookResponse"
      metadata_type: "WriteBookMetadata"
    };
  }

  rpc StreamBooks(StreamBooksRequest) returns (stream Book);
}

message WriteBookRequest {
  string name = 1 [(google.api.field_behavior) = REQUIRED];
}

message StreamBooksRequest {
  string parent = 1;
}

message Book {
  string name = 1;
  string revision_id = 2 [(google.api.field_behavior) = OUTPUT_ONLY];
  google.protobuf.Timestamp revision_create_time = 3;
  repeated string tags = 4;
  map<string, string> labels = 5;
}
`

func TestLoaderParse(t *testing.T) {
	loader := NewLoader(nil)

	schema, err := loader.Parse(context.Background(), "library.proto", librarySample)
	require.NoError(t, err)

	assert.Equal(t, "library.proto", schema.File)
	assert.Equal(t, "proto3", schema.Syntax)
	assert.Equal(t, "test.library.v1", schema.Package)
	assert.Contains(t, schema.Imports, "google/longrunning/operations.proto")

	require.Len(t, schema.Services, 1)
	svc := schema.Services[0]
	assert.Equal(t, "LibraryService", svc.Name)
	require.Len(t, svc.Methods, 2)

	write := svc.Methods[0]
	assert.Equal(t, "WriteBook", write.Name)
	assert.Equal(t, "test.library.v1.WriteBookRequest", write.InputType)
	assert.Equal(t, OperationType, write.OutputType)
	assert.True(t, write.ReturnsOperation())
	require.NotNil(t, write.OperationInfo)
	assert.Equal(t, "WriteBookResponse", write.OperationInfo.ResponseType)
	assert.Equal(t, "WriteBookMetadata", write.OperationInfo.MetadataType)

	stream := svc.Methods[1]
	assert.True(t, stream.ServerStreaming)
	assert.False(t, stream.ClientStreaming)
	assert.Nil(t, stream.OperationInfo)
}

func TestLoaderParseFields(t *testing.T) {
	loader := NewLoader(nil)

	schema, err := loader.Parse(context.Background(), "library.proto", librarySample)
	require.NoError(t, err)

	book := schema.Message("Book")
	require.NotNil(t, book)
	assert.Equal(t, "test.library.v1.Book", book.FullName)

	rev := book.Field("revision_id")
	require.NotNil(t, rev)
	assert.Equal(t, "string", rev.Type)
	assert.Equal(t, 2, rev.Number)
	assert.True(t, rev.HasBehavior("OUTPUT_ONLY"))
	assert.False(t, rev.HasBehavior("REQUIRED"))

	created := book.Field("revision_create_time")
	require.NotNil(t, created)
	assert.Equal(t, TimestampType, created.Type)

	tags := book.Field("tags")
	require.NotNil(t, tags)
	assert.True(t, tags.Repeated)

	labels := book.Field("labels")
	require.NotNil(t, labels)
	assert.Equal(t, "map<string, string>", labels.Type)
	assert.False(t, labels.Repeated)

	name := schema.Message("WriteBookRequest").Field("name")
	require.NotNil(t, name)
	assert.True(t, name.HasBehavior("REQUIRED"))
}

const wrappedSample = `syntax = "proto3";

package test.library.v1;

import "google/api/client.proto";
import "google/longrunning/operations.proto";

service LibraryService {
  option (google.api.default_host) = "library.example.com";

  rpc WriteBook(WriteBookRequest)
      returns (google.longrunning.Operation) {
    option (google.longrunning.operation_info) = {
      response_type: "WriteBookResponse"
      metadata_type: "WriteBookMetadata"
    };
  }

  rpc ArchiveBook(ArchiveBookRequest)
      returns (google.longrunning.Operation)
  {
    option (google.longrunning.operation_info) = {
      response_type: "ArchiveBookResponse"
      metadata_type: "ArchiveBookMetadata"
    };
  }

  rpc GetBook(GetBookRequest)
      returns (Book);
}

message WriteBookRequest {
  string name = 1;
}

message ArchiveBookRequest {
  string name = 1;
}

message GetBookRequest {
  string name = 1;
}

message Book {
  string name = 1;
}
`

func TestLoaderParseWrappedSignatures(t *testing.T) {
	loader := NewLoader(nil)

	schema, err := loader.Parse(context.Background(), "wrapped.proto", wrappedSample)
	require.NoError(t, err)

	require.Len(t, schema.Services, 1)
	svc := schema.Services[0]
	require.Len(t, svc.Methods, 3)

	// Signature wraps before its opening brace.
	write := svc.Methods[0]
	assert.Equal(t, "WriteBook", write.Name)
	require.NotNil(t, write.OperationInfo)
	assert.Equal(t, "WriteBookResponse", write.OperationInfo.ResponseType)
	assert.Equal(t, "WriteBookMetadata", write.OperationInfo.MetadataType)

	// Opening brace on its own line.
	archive := svc.Methods[1]
	assert.Equal(t, "ArchiveBook", archive.Name)
	require.NotNil(t, archive.OperationInfo)
	assert.Equal(t, "ArchiveBookResponse", archive.OperationInfo.ResponseType)

	// Wrapped bare signature, no options.
	get := svc.Methods[2]
	assert.Equal(t, "GetBook", get.Name)
	assert.Nil(t, get.OperationInfo)

	assert.Equal(t, `"library.example.com"`, svc.Options["google.api.default_host"])
}

func TestLoaderParseError(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.Parse(context.Background(), "broken.proto", `syntax = "proto3";

message Broken {
  string name 1;
}
`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken.proto", pe.File)
	assert.Greater(t, pe.Line, 0)
}

func TestLoadDirSkipsUnparseableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.proto"),
		[]byte("syntax = \"proto3\";\n\npackage test.v1;\n\nmessage Good {\n  string name = 1;\n}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.proto"),
		[]byte("syntax = \"proto3\";\n\nmessage Bad {\n  string = ;\n}\n"), 0644))

	loader := NewLoader(nil)
	schemas, parseErrs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, schemas, 1)
	assert.Equal(t, filepath.Join(dir, "good.proto"), schemas[0].File)
	require.Len(t, parseErrs, 1)
	assert.Equal(t, filepath.Join(dir, "bad.proto"), parseErrs[0].File)
}

func TestLoadDirResolvesCrossImports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.proto"),
		[]byte("syntax = \"proto3\";\n\npackage test.v1;\n\nmessage Book {\n  string name = 1;\n}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shelf.proto"),
		[]byte("syntax = \"proto3\";\n\npackage test.v1;\n\nimport \"book.proto\";\n\nmessage Shelf {\n  repeated Book books = 1;\n}\n"), 0644))

	loader := NewLoader(nil)
	schemas, parseErrs, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, parseErrs)
	require.Len(t, schemas, 2)

	// Ordered by path: book.proto then shelf.proto.
	shelf := schemas[1].Message("Shelf")
	require.NotNil(t, shelf)
	assert.Equal(t, "test.v1.Book", shelf.Field("books").Type)
}

func TestFindProtoFilesSkipsVendoredDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "v.proto"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "a.proto"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644))

	files, err := FindProtoFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "api", "a.proto")}, files)
}
