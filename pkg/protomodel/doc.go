// Package protomodel parses proto sources into an immutable schema model.
//
// Compilation happens in two stages: protocompile produces linked
// descriptors for structure (messages, fields, services, methods), and a
// raw-content scan recovers source positions and custom annotations such as
// operation_info and field_behavior, which are merged into the model by
// qualified element name. Unknown custom options are preserved as opaque
// key/value pairs so rules can read annotations the loader does not
// understand.
package protomodel
