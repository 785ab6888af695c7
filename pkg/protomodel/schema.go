package protomodel

// Position represents a location in proto source
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Schema is the immutable in-memory model of a single proto file.
// Rules treat it as read-only; nothing mutates a Schema after Load.
type Schema struct {
	File     string
	Syntax   string
	Package  string
	Imports  []string
	Messages []*Message
	Enums    []*Enum
	Services []*Service
}

// Service represents a service definition
type Service struct {
	Name    string
	Methods []*Method
	Options map[string]string
	Pos     Position
}

// Method represents an RPC method
type Method struct {
	Name            string
	InputType       string
	OutputType      string
	ClientStreaming bool
	ServerStreaming bool
	HTTPVerb        string
	HTTPPath        string
	OperationInfo   *OperationInfo
	Options         map[string]string
	Pos             Position
}

// OperationInfo mirrors the google.longrunning.operation_info annotation
type OperationInfo struct {
	ResponseType string
	MetadataType string
}

// Message represents a message definition
type Message struct {
	Name     string
	FullName string
	Fields   []*Field
	Nested   []*Message
	Enums    []*Enum
	Options  map[string]string
	Pos      Position
}

// Field represents a message field
type Field struct {
	Name              string
	Type              string
	Number            int
	Repeated          bool
	Optional          bool
	Behaviors         []string
	ResourceReference string
	Options           map[string]string
	Pos               Position
}

// Enum represents an enum definition
type Enum struct {
	Name    string
	Values  []*EnumValue
	Options map[string]string
	Pos     Position
}

// EnumValue represents a single enum value
type EnumValue struct {
	Name   string
	Number int
	Pos    Position
}

// OperationType is the fully qualified name of the long-running operation
// message that LRO rules key off.
const OperationType = "google.longrunning.Operation"

// TimestampType is the fully qualified name of the well-known timestamp.
const TimestampType = "google.protobuf.Timestamp"

// ReturnsOperation reports whether the method returns the long-running
// operation type.
func (m *Method) ReturnsOperation() bool {
	return m.OutputType == OperationType
}

// HasBehavior reports whether the field carries the given field_behavior tag.
func (f *Field) HasBehavior(behavior string) bool {
	for _, b := range f.Behaviors {
		if b == behavior {
			return true
		}
	}
	return false
}

// Field returns the field with the given name, or nil.
func (m *Message) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Message returns the top-level message with the given name, or nil.
func (s *Schema) Message(name string) *Message {
	for _, m := range s.Messages {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// WalkMessages visits every message in the schema, including nested ones.
func (s *Schema) WalkMessages(fn func(*Message)) {
	var walk func(msgs []*Message)
	walk = func(msgs []*Message) {
		for _, m := range msgs {
			fn(m)
			walk(m.Nested)
		}
	}
	walk(s.Messages)
}

// WalkMethods visits every method of every service in the schema.
func (s *Schema) WalkMethods(fn func(*Service, *Method)) {
	for _, svc := range s.Services {
		for _, m := range svc.Methods {
			fn(svc, m)
		}
	}
}
