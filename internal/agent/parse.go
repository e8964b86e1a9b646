package agent

import (
	"encoding/json"
	"regexp"

	"github.com/oventide/pizzabot/internal/domain"
)

// callHead matches the start of an embedded invocation: the literal
// "function:" marker (case-insensitive), a bare identifier, and the
// opening parenthesis. The argument object that follows is extracted by
// balancing braces rather than by pattern, since JSON nests.
var callHead = regexp.MustCompile(`(?i)function:\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// ParseFunctionCall scans raw model output for an invocation of the
// accepted shape `function: NAME({...json...})`. It returns the parsed
// call and true on success. Any deviation (no marker, unbalanced
// braces, a missing closing parenthesis, or arguments that do not parse
// as a JSON object) returns false so the caller can fall back to
// treating the text as a plain reply.
func ParseFunctionCall(text string) (domain.FunctionCall, bool) {
	loc := callHead.FindStringSubmatchIndex(text)
	if loc == nil {
		return domain.FunctionCall{}, false
	}
	name := text[loc[2]:loc[3]]
	rest := text[loc[1]:]

	objEnd, ok := scanJSONObject(rest)
	if !ok {
		return domain.FunctionCall{}, false
	}
	raw := rest[:objEnd]

	// The object must be followed by the closing parenthesis.
	i := objEnd
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
		i++
	}
	if i >= len(rest) || rest[i] != ')' {
		return domain.FunctionCall{}, false
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return domain.FunctionCall{}, false
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return domain.FunctionCall{Name: name, Arguments: args}, true
}

// scanJSONObject finds the end offset of a balanced JSON object at the
// start of s (after optional whitespace), honoring string literals and
// backslash escapes. Returns false if s does not begin with '{' or the
// object never closes.
func scanJSONObject(s string) (int, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for ; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i + 1, true
				}
			}
		}
	}
	return 0, false
}
