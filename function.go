package testgen

import (
	"regexp"
	"strings"
)

// signaturePattern matches `[class ]accessPath(params)[ async]`, where
// accessPath is ident(.ident)* and the first ident may contain hyphens (the
// package segment of a scoped npm-style name).
var signaturePattern = regexp.MustCompile(
	`^(?:class\s+)?([A-Za-z0-9_$-]+(?:\.[A-Za-z0-9_$]+)*)\(([^)]*)\)(\s+async)?$`,
)

// Function is an immutable, externally-constructed description of one
// exported function under test. The engine never mutates a Function after
// construction; it is shared by reference across every Prompt derived from
// it.
type Function struct {
	// Package is the name of the package the function belongs to.
	Package string

	// AccessPath is the dotted identifier chain rooted at the package that
	// locates this function in the exported API, e.g. "string-utils.titleCase".
	AccessPath string

	// Name is the last segment of AccessPath.
	Name string

	// Signature is the parenthesized parameter list, e.g. "(string)".
	Signature string

	// Async is true when the signature carries a trailing " async".
	Async bool

	// Constructor is true when the caller identified this as a class
	// constructor rather than a plain function.
	Constructor bool

	// DocComment is the function's doc comment, if one was discovered.
	DocComment string

	// Body is the function's source body, if one was discovered.
	Body string
}

// ParseSignature parses a textual signature of the form
// `[class ]accessPath(params)[ async]` into a Function. Constructor is set
// when the signature starts with "class ". The Package, DocComment, and Body
// fields are not derivable from the signature text alone and must be set by
// the caller afterward.
func ParseSignature(signature string) (*Function, error) {
	trimmed := strings.TrimSpace(signature)
	match := signaturePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return nil, NewInvalidSignatureError(signature, nil)
	}

	accessPath := match[1]
	params := match[2]
	async := match[3] != ""
	constructor := strings.HasPrefix(trimmed, "class ")

	segments := strings.Split(accessPath, ".")
	name := segments[len(segments)-1]

	return &Function{
		AccessPath:  accessPath,
		Name:        name,
		Signature:   "(" + params + ")",
		Async:       async,
		Constructor: constructor,
	}, nil
}

// sanitize replaces every character outside [A-Za-z0-9_$] with an
// underscore, producing a valid binding identifier for the prompt's imports
// header. It is idempotent: sanitize(sanitize(s)) == sanitize(s).
func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// whitespaceRun matches one or more consecutive whitespace characters.
var whitespaceRun = regexp.MustCompile(`\s+`)

// normalize collapses runs of whitespace into a single space and trims the
// result, so two function bodies that differ only in incidental formatting
// compare equal.
func normalize(source string) string {
	collapsed := whitespaceRun.ReplaceAllString(source, " ")
	return strings.TrimSpace(collapsed)
}
