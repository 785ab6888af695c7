package protomodel

// Built-in sources for the googleapis annotation files so that user protos
// importing them compile without a local copy of googleapis. Only the
// declarations the checker inspects are included; the shapes match the
// published protos closely enough for option interpretation.
var wellKnownSources = map[string]string{
	"google/longrunning/operations.proto": `
syntax = "proto3";

package google.longrunning;

import "google/protobuf/any.proto";
import "google/protobuf/descriptor.proto";

extend google.protobuf.MethodOptions {
  google.longrunning.OperationInfo operation_info = 1049;
}

message Operation {
  string name = 1;
  google.protobuf.Any metadata = 2;
  bool done = 3;
  google.protobuf.Any response = 5;
}

message OperationInfo {
  string response_type = 1;
  string metadata_type = 2;
}
`,
	"google/api/field_behavior.proto": `
syntax = "proto3";

package google.api;

import "google/protobuf/descriptor.proto";

extend google.protobuf.FieldOptions {
  repeated google.api.FieldBehavior field_behavior = 1052;
}

enum FieldBehavior {
  FIELD_BEHAVIOR_UNSPECIFIED = 0;
  OPTIONAL = 1;
  REQUIRED = 2;
  OUTPUT_ONLY = 3;
  INPUT_ONLY = 4;
  IMMUTABLE = 5;
  UNORDERED_LIST = 6;
  NON_EMPTY_DEFAULT = 7;
  IDENTIFIER = 8;
}
`,
	"google/api/resource.proto": `
syntax = "proto3";

package google.api;

import "google/protobuf/descriptor.proto";

extend google.protobuf.FieldOptions {
  google.api.ResourceReference resource_reference = 1055;
}

extend google.protobuf.MessageOptions {
  google.api.ResourceDescriptor resource = 1053;
}

message ResourceDescriptor {
  string type = 1;
  repeated string pattern = 2;
  string name_field = 3;
  string plural = 5;
  string singular = 6;
}

message ResourceReference {
  string type = 1;
  string child_type = 2;
}
`,
	"google/api/http.proto": `
syntax = "proto3";

package google.api;

message Http {
  repeated HttpRule rules = 1;
}

message HttpRule {
  string selector = 1;
  oneof pattern {
    string get = 2;
    string put = 3;
    string post = 4;
    string delete = 5;
    string patch = 6;
    CustomHttpPattern custom = 8;
  }
  string body = 7;
  string response_body = 12;
  repeated HttpRule additional_bindings = 11;
}

message CustomHttpPattern {
  string kind = 1;
  string path = 2;
}
`,
	"google/api/annotations.proto": `
syntax = "proto3";

package google.api;

import "google/api/http.proto";
import "google/protobuf/descriptor.proto";

extend google.protobuf.MethodOptions {
  google.api.HttpRule http = 72295728;
}
`,
	"google/api/client.proto": `
syntax = "proto3";

package google.api;

import "google/protobuf/descriptor.proto";

extend google.protobuf.MethodOptions {
  repeated string method_signature = 1051;
}

extend google.protobuf.ServiceOptions {
  string default_host = 1049;
  string oauth_scopes = 1050;
}
`,
}
