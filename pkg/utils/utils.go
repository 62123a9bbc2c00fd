// Package utils provides helpers for C++ qualified names written as plain
// strings, such as the paths accepted on the command line.
package utils

import (
	"fmt"
	"strings"
)

// SplitPath splits a C++ qualified name into parts. Template arguments are
// kept with their segment, so "std::map<a::b, c>::iterator" has three parts.
func SplitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" || path == "::" {
		return []string{}
	}

	var parts []string
	var current strings.Builder
	depth := 0
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case c == ':' && depth == 0 && i+1 < len(path) && path[i+1] == ':':
			if current.Len() > 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			}
			i++
			continue
		}
		current.WriteByte(c)
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// JoinPath joins path parts into a C++ qualified name
func JoinPath(parts []string) string {
	if len(parts) == 0 {
		return "::"
	}

	return strings.Join(parts, "::")
}

// IsValidCppIdentifier checks if a string is a valid C++ identifier
func IsValidCppIdentifier(name string) bool {
	if name == "" {
		return false
	}

	// Must start with letter or underscore
	if !isLetter(rune(name[0])) && name[0] != '_' {
		return false
	}

	// Rest must be letters, digits, or underscores
	for _, char := range name[1:] {
		if !isLetter(char) && !isDigit(char) && char != '_' {
			return false
		}
	}

	return true
}

// isLetter checks if a rune is a letter
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit checks if a rune is a digit
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// RemoveTemplateParams removes template parameters from a type name
func RemoveTemplateParams(typeName string) string {
	depth := 0
	var result strings.Builder

	for _, char := range typeName {
		if char == '<' {
			depth++
		} else if char == '>' {
			depth--
		} else if depth == 0 {
			result.WriteRune(char)
		}
	}

	return strings.TrimSpace(result.String())
}

// ParseLookupPath turns "N::C::~C" or "vec<int>::size" into the
// identifiers a scope lookup uses, one per segment.
func ParseLookupPath(path string) ([]string, error) {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty name %q", path)
	}
	ids := make([]string, len(parts))
	for i, part := range parts {
		if strings.HasPrefix(part, "operator") && i == len(parts)-1 {
			ids[i] = normalizeOperator(part)
			continue
		}
		id := RemoveTemplateParams(part)
		if !IsValidCppIdentifier(strings.TrimPrefix(id, "~")) {
			return nil, fmt.Errorf("invalid segment %q in %q", part, path)
		}
		ids[i] = id
	}
	return ids, nil
}

// normalizeOperator spells an operator function name the way the parser
// records it, "operator" and the symbol separated by one space.
func normalizeOperator(id string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(id, "operator"))
	if rest == "" {
		return id
	}
	if IsValidCppIdentifier(rest) && rest != "new" && rest != "delete" {
		// "operatorX" is an ordinary identifier
		if !strings.HasPrefix(id, "operator ") {
			return id
		}
	}
	return "operator " + rest
}
