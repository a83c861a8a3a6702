package naming

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenResourceChars maps characters that would corrupt the grammar to
// safe replacements. Underscore is the field separator and must never appear
// inside a field; dots would start the extension early. Every entry is a 1:1
// substitution so the sanitized string keeps its length.
var forbiddenResourceChars = map[rune]rune{
	'"':  ' ',
	'\'': ' ',
	'`':  ' ',
	',':  ' ',
	'_':  '-',
	'[':  '-',
	']':  '-',
	'{':  '-',
	'}':  '-',
	'(':  '-',
	')':  '-',
	'.':  '-',
	'/':  '-',
	'\\': '-',
}

// SanitizeResource remaps forbidden characters in a free-form resource
// string. It is idempotent and length-preserving, and is applied by Encode
// before a resource enters a file name; Decode never needs to reverse it.
func SanitizeResource(resource string) string {
	if resource == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if repl, ok := forbiddenResourceChars[r]; ok {
			return repl
		}
		return r
	}, resource)
}

// restoredTagPattern matches the marker appended to the resource of a file
// restored from the version history, e.g. "+restored-v3+".
var restoredTagPattern = regexp.MustCompile(`\+restored-v[0-9]+\+$`)

// TagRestored appends a restored-from-version marker to a resource string.
func TagRestored(resource string, version int) string {
	return fmt.Sprintf("%s+restored-v%d+", resource, version)
}

// StripRestoredTag removes any trailing restored-from-version markers from a
// resource string. Restoring a restored file stacks markers, so it strips
// until none remain.
func StripRestoredTag(resource string) string {
	for {
		stripped := restoredTagPattern.ReplaceAllString(resource, "")
		if stripped == resource {
			return stripped
		}
		resource = stripped
	}
}
