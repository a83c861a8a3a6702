package naming

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Character classes shared by every name field.
var (
	// idPattern matches short identifiers: project, object and step names.
	idPattern = regexp.MustCompile(`^[A-Za-z0-9+-]{1,10}$`)

	// resourcePattern matches the resource field character class.
	resourcePattern = regexp.MustCompile(`^[A-Za-z0-9+\s-]+$`)

	// extensionPattern matches extensions, which may contain further dots.
	extensionPattern = regexp.MustCompile(`^[A-Za-z0-9.]+$`)

	// itemFolderPattern matches item root folder names (project_T_object).
	itemFolderPattern = regexp.MustCompile(`(?i)^[a-z0-9+-]{1,10}_[ASG]_[a-z0-9+-]{1,10}$`)
)

// Grammar is the decode-time view of the naming convention. It carries the
// currently valid version-block prefixes, which come from configuration (or
// the daemon, in online mode) rather than being hard-coded. Build a fresh
// Grammar whenever the configured states change; a Grammar itself is
// immutable and safe for concurrent use.
type Grammar struct {
	prefixes []string
}

// NewGrammar builds a grammar from the given version-prefix tokens, usually
// the fixed prefixes followed by every workflow state short name. Empty
// tokens are dropped; longer tokens are preferred when one token is a prefix
// of another.
func NewGrammar(prefixes []string) *Grammar {
	tokens := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	// Longest first, so that matching never stops at a shorter token that
	// happens to lead a longer one.
	sort.SliceStable(tokens, func(i, j int) bool {
		return len(tokens[i]) > len(tokens[j])
	})
	return &Grammar{prefixes: tokens}
}

// Prefixes returns the version-prefix tokens, longest first.
func (g *Grammar) Prefixes() []string {
	out := make([]string, len(g.prefixes))
	copy(out, g.prefixes)
	return out
}

// IsItemFolderName reports whether a folder name follows the item root
// folder convention (project_T_object).
func IsItemFolderName(name string) bool {
	return itemFolderPattern.MatchString(name)
}

// matchVersionBlock tries to parse a whole field as a version block: an
// optional known prefix followed by one or more digits. The prefix is
// returned as written in the name.
func (g *Grammar) matchVersionBlock(field string) (state string, version int, ok bool) {
	if v, allDigits := parseDigits(field); allDigits {
		return "", v, true
	}
	for _, p := range g.prefixes {
		if len(field) <= len(p) {
			continue
		}
		if !strings.EqualFold(field[:len(p)], p) {
			continue
		}
		if v, allDigits := parseDigits(field[len(p):]); allDigits {
			return field[:len(p)], v, true
		}
	}
	return "", 0, false
}

// looksLikeVersionBlock reports whether a field starts the way a version
// block does: digits, or a known prefix immediately followed by a digit.
// The resource field must not start like a version block; this is the
// tie-break that keeps "v003" a version and "film2" a resource.
func (g *Grammar) looksLikeVersionBlock(field string) bool {
	if field == "" {
		return false
	}
	if field[0] >= '0' && field[0] <= '9' {
		return true
	}
	for _, p := range g.prefixes {
		if len(field) <= len(p) {
			continue
		}
		if strings.EqualFold(field[:len(p)], p) && field[len(p)] >= '0' && field[len(p)] <= '9' {
			return true
		}
	}
	return false
}

// validResource reports whether a field is acceptable as a resource string.
func (g *Grammar) validResource(field string) bool {
	return resourcePattern.MatchString(field) && !g.looksLikeVersionBlock(field)
}

// parseDigits parses a string consisting only of ASCII digits. Runs too
// long to fit an int are rejected, not wrapped.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
