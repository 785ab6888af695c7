package protomodel

import (
	"regexp"
	"strings"
)

// sourceInfo holds positions and raw option text extracted by scanning proto
// source line by line. Descriptors do not expose custom options without the
// full googleapis type universe, so the loader pairs the compiled descriptor
// with this scan and merges the two by qualified element name.
type sourceInfo struct {
	positions      map[string]Position          // kind:qualified-name -> position
	methodOptions  map[string]map[string]string // Service.Method -> option name -> raw value
	messageOptions map[string]map[string]string // Message dotted name -> option name -> raw value
	serviceOptions map[string]map[string]string // Service -> option name -> raw value
	fieldOptions   map[string]string            // Message.field -> raw bracket text
}

var (
	serviceRe = regexp.MustCompile(`^service\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{`)
	messageRe = regexp.MustCompile(`^message\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{`)
	enumRe    = regexp.MustCompile(`^enum\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{`)
	oneofRe   = regexp.MustCompile(`^oneof\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{`)
	rpcRe     = regexp.MustCompile(`^rpc\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	optionRe  = regexp.MustCompile(`^option\s+\(([A-Za-z0-9_.]+)\)(\.[A-Za-z0-9_.]+)?\s*=\s*(.*)$`)
	fieldRe   = regexp.MustCompile(`^(repeated\s+|optional\s+|required\s+)?([A-Za-z_][A-Za-z0-9_.]*(?:\s*<[^>]*>)?)\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(\d+)\s*(\[|;)`)
)

type scanContext struct {
	kind  string // service, rpc, message, enum, oneof
	name  string
	depth int
}

// scanSource extracts positions and raw annotation text from proto content.
func scanSource(content string) *sourceInfo {
	info := &sourceInfo{
		positions:      make(map[string]Position),
		methodOptions:  make(map[string]map[string]string),
		messageOptions: make(map[string]map[string]string),
		serviceOptions: make(map[string]map[string]string),
		fieldOptions:   make(map[string]string),
	}

	lines := strings.Split(stripBlockComments(content), "\n")
	var stack []scanContext
	depth := 0

	i := 0
	for i < len(lines) {
		raw := lines[i]
		line := strings.TrimSpace(stripComment(raw))
		lineNum := i + 1
		col := 1
		if idx := strings.Index(raw, strings.SplitN(line, " ", 2)[0]); idx >= 0 && line != "" {
			col = idx + 1
		}

		if line == "" {
			i++
			continue
		}

		// Multi-line option values and field option lists are consumed as a
		// region; extra tracks the additional lines swallowed so brace
		// accounting below sees the whole region.
		extra := 0

		switch {
		case serviceRe.MatchString(line):
			name := serviceRe.FindStringSubmatch(line)[1]
			info.positions["service:"+name] = Position{Line: lineNum, Column: col}
			stack = append(stack, scanContext{kind: "service", name: name, depth: depth})

		case messageRe.MatchString(line):
			name := messageRe.FindStringSubmatch(line)[1]
			qname := qualifiedMessage(stack, name)
			info.positions["message:"+qname] = Position{Line: lineNum, Column: col}
			stack = append(stack, scanContext{kind: "message", name: name, depth: depth})

		case enumRe.MatchString(line):
			name := enumRe.FindStringSubmatch(line)[1]
			info.positions["enum:"+qualifiedMessage(stack, name)] = Position{Line: lineNum, Column: col}
			stack = append(stack, scanContext{kind: "enum", name: name, depth: depth})

		case oneofRe.MatchString(line):
			name := oneofRe.FindStringSubmatch(line)[1]
			stack = append(stack, scanContext{kind: "oneof", name: name, depth: depth})

		case rpcRe.MatchString(line):
			name := rpcRe.FindStringSubmatch(line)[1]
			if svc := innermost(stack, "service"); svc != "" {
				info.positions["rpc:"+svc+"."+name] = Position{Line: lineNum, Column: col}
			}
			// A signature may wrap before its opening "{" or terminating ";".
			// An rpc with options opens a block; a bare signature ends with ";".
			sig, consumed := collectSignature(lines, i)
			if strings.Contains(sig, "{") {
				stack = append(stack, scanContext{kind: "rpc", name: name, depth: depth})
			}
			extra = consumed

		case optionRe.MatchString(line):
			m := optionRe.FindStringSubmatch(line)
			optName, optPath, rest := m[1], m[2], m[3]
			value, consumed := collectOptionValue(lines, i, rest)
			if optPath != "" {
				value = strings.TrimPrefix(optPath, ".") + ": " + value
			}
			recordOption(info, stack, optName, value)
			extra = consumed

		case fieldRe.MatchString(line):
			m := fieldRe.FindStringSubmatch(line)
			fieldName := m[3]
			msg := innermostMessage(stack)
			if msg != "" {
				key := msg + "." + fieldName
				info.positions["field:"+key] = Position{Line: lineNum, Column: col}
				if m[5] == "[" {
					opts, consumed := collectFieldOptions(lines, i)
					info.fieldOptions[key] = opts
					extra = consumed
				}
			}
		}

		region := line
		for k := 1; k <= extra; k++ {
			region += " " + strings.TrimSpace(stripComment(lines[i+k]))
		}

		// Track brace depth and pop contexts that close in this region.
		for _, r := range region {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
					stack = stack[:len(stack)-1]
				}
			}
		}
		i += extra + 1
	}

	return info
}

// collectOptionValue gathers an option value, following multi-line message
// literals until braces balance. Returns the raw value and how many extra
// lines were consumed.
func collectOptionValue(lines []string, start int, rest string) (string, int) {
	value := strings.TrimSuffix(strings.TrimSpace(rest), ";")
	open := strings.Count(rest, "{") - strings.Count(rest, "}")
	consumed := 0
	for open > 0 && start+consumed+1 < len(lines) {
		consumed++
		next := stripComment(lines[start+consumed])
		open += strings.Count(next, "{") - strings.Count(next, "}")
		value += " " + strings.TrimSpace(next)
	}
	value = strings.TrimSuffix(strings.TrimSpace(value), ";")
	return value, consumed
}

// collectSignature joins the lines of an rpc signature until its opening "{"
// or terminating ";" is seen, returning the joined text and how many extra
// lines were consumed. Stopping at the first "{" keeps option lines inside
// the body out of the signature.
func collectSignature(lines []string, start int) (string, int) {
	sig := strings.TrimSpace(stripComment(lines[start]))
	consumed := 0
	for !strings.Contains(sig, "{") && !strings.HasSuffix(sig, ";") && start+consumed+1 < len(lines) {
		consumed++
		sig += " " + strings.TrimSpace(stripComment(lines[start+consumed]))
	}
	return sig, consumed
}

// collectFieldOptions gathers the bracketed option list of a field, which may
// span lines, up to the closing "];".
func collectFieldOptions(lines []string, start int) (string, int) {
	line := stripComment(lines[start])
	idx := strings.Index(line, "[")
	text := line[idx+1:]
	consumed := 0
	for !strings.Contains(text, "]") && start+consumed+1 < len(lines) {
		consumed++
		text += " " + strings.TrimSpace(stripComment(lines[start+consumed]))
	}
	if end := strings.LastIndex(text, "]"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text), consumed
}

func recordOption(info *sourceInfo, stack []scanContext, name, value string) {
	// Attribute the option to the innermost rpc, message or service context.
	// File-level options carry nothing the rules need and are dropped.
	for i := len(stack) - 1; i >= 0; i-- {
		switch stack[i].kind {
		case "rpc":
			svc := innermost(stack[:i], "service")
			key := svc + "." + stack[i].name
			if info.methodOptions[key] == nil {
				info.methodOptions[key] = make(map[string]string)
			}
			info.methodOptions[key][name] = value
			return
		case "message":
			key := qualifiedMessage(stack[:i], stack[i].name)
			if info.messageOptions[key] == nil {
				info.messageOptions[key] = make(map[string]string)
			}
			info.messageOptions[key][name] = value
			return
		case "service":
			key := stack[i].name
			if info.serviceOptions[key] == nil {
				info.serviceOptions[key] = make(map[string]string)
			}
			info.serviceOptions[key][name] = value
			return
		}
	}
}

func innermost(stack []scanContext, kind string) string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].kind == kind {
			return stack[i].name
		}
	}
	return ""
}

// innermostMessage returns the dotted name of the enclosing message, skipping
// oneof groups.
func innermostMessage(stack []scanContext) string {
	var parts []string
	for _, c := range stack {
		if c.kind == "message" {
			parts = append(parts, c.name)
		}
	}
	return strings.Join(parts, ".")
}

func qualifiedMessage(stack []scanContext, name string) string {
	if prefix := innermostMessage(stack); prefix != "" {
		return prefix + "." + name
	}
	return name
}

// stripBlockComments blanks /* */ comments, preserving newlines so line
// numbers survive. Text inside string literals and line comments is left
// alone; trailing // comments are handled per line by stripComment.
func stripBlockComments(content string) string {
	out := []byte(content)
	inString, inLine, inBlock := false, false, false
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				inBlock = false
			} else if c != '\n' {
				out[i] = ' '
			}
		case inLine:
			if c == '\n' {
				inLine = false
			}
		case inString:
			if c == '"' && out[i-1] != '\\' {
				inString = false
			}
			if c == '\n' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			inLine = true
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i++
			inBlock = true
		}
	}
	return string(out)
}

// stripComment removes a trailing // comment, respecting string literals.
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if i == 0 || line[i-1] != '\\' {
				inString = !inString
			}
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

var (
	responseTypeRe = regexp.MustCompile(`response_type\s*:\s*"([^"]*)"`)
	metadataTypeRe = regexp.MustCompile(`metadata_type\s*:\s*"([^"]*)"`)
	httpVerbRe     = regexp.MustCompile(`(get|put|post|delete|patch)\s*:\s*"([^"]+)"`)
	behaviorRe     = regexp.MustCompile(`\(google\.api\.field_behavior\)\s*=\s*([A-Z_]+)`)
	refTypeRe      = regexp.MustCompile(`\(google\.api\.resource_reference\)(?:\.type\s*=|\s*=\s*\{\s*(?:child_)?type\s*:)\s*"([^"]+)"`)
)

// parseOperationInfo interprets the raw operation_info option value.
func parseOperationInfo(raw string) *OperationInfo {
	oi := &OperationInfo{}
	if m := responseTypeRe.FindStringSubmatch(raw); m != nil {
		oi.ResponseType = m[1]
	}
	if m := metadataTypeRe.FindStringSubmatch(raw); m != nil {
		oi.MetadataType = m[1]
	}
	return oi
}

// parseHTTPRule interprets the raw google.api.http option value.
func parseHTTPRule(raw string) (verb, path string) {
	if m := httpVerbRe.FindStringSubmatch(raw); m != nil {
		return strings.ToUpper(m[1]), m[2]
	}
	return "", ""
}

// parseFieldBehaviors extracts field_behavior tags from raw field options.
func parseFieldBehaviors(raw string) []string {
	var behaviors []string
	for _, m := range behaviorRe.FindAllStringSubmatch(raw, -1) {
		behaviors = append(behaviors, m[1])
	}
	return behaviors
}

// parseResourceReference extracts the referenced resource type, if any.
func parseResourceReference(raw string) string {
	if m := refTypeRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}
