package protomodel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ParseError reports a malformed proto input, naming the offending line when
// the compiler provides one.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader parses proto sources into Schemas.
type Loader struct {
	log *logrus.Logger
}

// NewLoader creates a loader. A nil logger falls back to logrus defaults.
func NewLoader(log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	return &Loader{log: log}
}

// Parse compiles a single proto source and returns its Schema.
func (l *Loader) Parse(ctx context.Context, filename, content string) (*Schema, error) {
	return l.parse(ctx, filename, content, map[string]string{filename: content})
}

// ParseWithSources compiles filename against an explicit source set, so
// files can import each other without touching disk.
func (l *Loader) ParseWithSources(ctx context.Context, filename string, sources map[string]string) (*Schema, error) {
	content, ok := sources[filename]
	if !ok {
		return nil, &ParseError{File: filename, Err: errors.New("file not in source set")}
	}
	return l.parse(ctx, filename, content, sources)
}

// parse compiles filename against the given source set plus the built-in
// googleapis stubs and the standard well-known types.
func (l *Loader) parse(ctx context.Context, filename, content string, sources map[string]string) (*Schema, error) {
	all := make(map[string]string, len(sources)+len(wellKnownSources))
	for k, v := range wellKnownSources {
		all[k] = v
	}
	for k, v := range sources {
		all[k] = v
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(all),
		}),
	}

	files, err := compiler.Compile(ctx, filename)
	if err != nil {
		return nil, asParseError(filename, err)
	}

	var fd protoreflect.FileDescriptor
	for _, f := range files {
		if f.Path() == filename {
			fd = f
			break
		}
	}
	if fd == nil {
		return nil, &ParseError{File: filename, Err: errors.New("no files compiled")}
	}

	info := scanSource(content)
	return buildSchema(filename, fd, info), nil
}

// LoadFile parses a single proto file from disk.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Parse(ctx, path, string(data))
}

// LoadDir walks dir for .proto files and parses each one. A file that fails
// to parse is reported and skipped; the remaining files are still loaded.
// Results are ordered by path.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]*Schema, []*ParseError, error) {
	paths, err := FindProtoFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	// All discovered files share one source set so imports between them
	// resolve during compilation.
	sources := make(map[string]string, len(paths))
	byKey := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		key := filepath.ToSlash(rel)
		sources[key] = string(data)
		byKey[key] = p
	}

	var schemas []*Schema
	var parseErrs []*ParseError
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		schema, err := l.parse(ctx, key, sources[key], sources)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				pe = &ParseError{File: key, Err: err}
			}
			pe.File = byKey[key]
			l.log.WithField("file", pe.File).Warnf("skipping unparseable file: %v", pe.Err)
			parseErrs = append(parseErrs, pe)
			continue
		}
		schema.File = byKey[key]
		schemas = append(schemas, schema)
	}

	return schemas, parseErrs, nil
}

// FindProtoFiles returns all .proto files under dir, skipping hidden, vendor
// and third_party directories.
func FindProtoFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			name := fi.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "third_party") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".proto" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// asParseError converts a compiler error into a ParseError with position.
func asParseError(file string, err error) *ParseError {
	var ewp reporter.ErrorWithPos
	if errors.As(err, &ewp) {
		pos := ewp.GetPosition()
		return &ParseError{File: file, Line: pos.Line, Err: ewp.Unwrap()}
	}
	return &ParseError{File: file, Err: err}
}

// buildSchema converts a compiled file descriptor into the immutable Schema,
// merging positions and annotations recovered from the raw source.
func buildSchema(filename string, fd protoreflect.FileDescriptor, info *sourceInfo) *Schema {
	schema := &Schema{
		File:    filename,
		Syntax:  fd.Syntax().String(),
		Package: string(fd.Package()),
	}

	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		schema.Imports = append(schema.Imports, imports.Get(i).Path())
	}

	msgs := fd.Messages()
	for i := 0; i < msgs.Len(); i++ {
		schema.Messages = append(schema.Messages, buildMessage(msgs.Get(i), "", info))
	}

	enums := fd.Enums()
	for i := 0; i < enums.Len(); i++ {
		schema.Enums = append(schema.Enums, buildEnum(enums.Get(i), "", info))
	}

	svcs := fd.Services()
	for i := 0; i < svcs.Len(); i++ {
		schema.Services = append(schema.Services, buildService(svcs.Get(i), info))
	}

	return schema
}

func buildMessage(md protoreflect.MessageDescriptor, prefix string, info *sourceInfo) *Message {
	local := string(md.Name())
	if prefix != "" {
		local = prefix + "." + local
	}

	msg := &Message{
		Name:     string(md.Name()),
		FullName: string(md.FullName()),
		Options:  info.messageOptions[local],
		Pos:      info.positions["message:"+local],
	}

	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		msg.Fields = append(msg.Fields, buildField(fields.Get(i), local, info))
	}

	nested := md.Messages()
	for i := 0; i < nested.Len(); i++ {
		nd := nested.Get(i)
		if nd.IsMapEntry() {
			continue
		}
		msg.Nested = append(msg.Nested, buildMessage(nd, local, info))
	}

	enums := md.Enums()
	for i := 0; i < enums.Len(); i++ {
		msg.Enums = append(msg.Enums, buildEnum(enums.Get(i), local, info))
	}

	return msg
}

func buildField(fd protoreflect.FieldDescriptor, msgLocal string, info *sourceInfo) *Field {
	key := msgLocal + "." + string(fd.Name())
	field := &Field{
		Name:     string(fd.Name()),
		Type:     fieldTypeName(fd),
		Number:   int(fd.Number()),
		Repeated: fd.Cardinality() == protoreflect.Repeated && !fd.IsMap(),
		Optional: fd.HasOptionalKeyword(),
		Pos:      info.positions["field:"+key],
	}

	if raw, ok := info.fieldOptions[key]; ok {
		field.Behaviors = parseFieldBehaviors(raw)
		field.ResourceReference = parseResourceReference(raw)
		field.Options = splitOptionPairs(raw)
	}

	return field
}

// fieldTypeName renders a field type the way it appears in source: scalar
// kind names, fully qualified message/enum names, and map<k, v> for maps.
func fieldTypeName(fd protoreflect.FieldDescriptor) string {
	if fd.IsMap() {
		return fmt.Sprintf("map<%s, %s>", fieldTypeName(fd.MapKey()), fieldTypeName(fd.MapValue()))
	}
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return string(fd.Message().FullName())
	case protoreflect.EnumKind:
		return string(fd.Enum().FullName())
	default:
		return fd.Kind().String()
	}
}

func buildEnum(ed protoreflect.EnumDescriptor, prefix string, info *sourceInfo) *Enum {
	local := string(ed.Name())
	if prefix != "" {
		local = prefix + "." + local
	}

	enum := &Enum{
		Name: string(ed.Name()),
		Pos:  info.positions["enum:"+local],
	}

	values := ed.Values()
	for i := 0; i < values.Len(); i++ {
		vd := values.Get(i)
		enum.Values = append(enum.Values, &EnumValue{
			Name:   string(vd.Name()),
			Number: int(vd.Number()),
		})
	}

	return enum
}

func buildService(sd protoreflect.ServiceDescriptor, info *sourceInfo) *Service {
	svc := &Service{
		Name:    string(sd.Name()),
		Options: info.serviceOptions[string(sd.Name())],
		Pos:     info.positions["service:"+string(sd.Name())],
	}

	methods := sd.Methods()
	for i := 0; i < methods.Len(); i++ {
		md := methods.Get(i)
		key := svc.Name + "." + string(md.Name())
		method := &Method{
			Name:            string(md.Name()),
			InputType:       string(md.Input().FullName()),
			OutputType:      string(md.Output().FullName()),
			ClientStreaming: md.IsStreamingClient(),
			ServerStreaming: md.IsStreamingServer(),
			Options:         info.methodOptions[key],
			Pos:             info.positions["rpc:"+key],
		}

		if raw, ok := method.Options["google.longrunning.operation_info"]; ok {
			method.OperationInfo = parseOperationInfo(raw)
		}
		if raw, ok := method.Options["google.api.http"]; ok {
			method.HTTPVerb, method.HTTPPath = parseHTTPRule(raw)
		}

		svc.Methods = append(svc.Methods, method)
	}

	return svc
}

// splitOptionPairs breaks a raw field option list into name/value pairs,
// respecting nested braces and string literals.
func splitOptionPairs(raw string) map[string]string {
	pairs := make(map[string]string)
	depth := 0
	inString := false
	start := 0
	var parts []string
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '"':
			if i == 0 || raw[i-1] != '\\' {
				inString = !inString
			}
		case '{', '[':
			if !inString {
				depth++
			}
		case '}', ']':
			if !inString {
				depth--
			}
		case ',':
			if !inString && depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, raw[start:])

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.Index(part, "=")
		if eq < 0 {
			pairs[part] = ""
			continue
		}
		name := strings.TrimSpace(part[:eq])
		name = strings.TrimPrefix(name, "(")
		name = strings.Replace(name, ")", "", 1)
		pairs[name] = strings.TrimSpace(part[eq+1:])
	}
	return pairs
}
