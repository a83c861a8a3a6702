package naming

import (
	"fmt"
	"strings"
)

// Decode splits a file name into its components. The name must be a bare
// basename, not a path. It returns ErrNotMatched when the name does not
// conform to the grammar; it never inspects the filesystem.
func (g *Grammar) Decode(name string) (Components, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Components{}, fmt.Errorf("%w: %q is not a basename", ErrNotMatched, name)
	}

	dot := strings.IndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return Components{}, fmt.Errorf("%w: %q has no extension", ErrNotMatched, name)
	}
	base, ext := name[:dot], name[dot+1:]
	if !extensionPattern.MatchString(ext) {
		return Components{}, fmt.Errorf("%w: bad extension in %q", ErrNotMatched, name)
	}

	fields := strings.Split(base, "_")
	if len(fields) < 3 {
		return Components{}, fmt.Errorf("%w: %q", ErrNotMatched, name)
	}
	if !idPattern.MatchString(fields[0]) {
		return Components{}, fmt.Errorf("%w: bad project in %q", ErrNotMatched, name)
	}

	c := Components{
		Project:   fields[0],
		Version:   NoVersion,
		Extension: ext,
	}

	// The type letter decides the field layout. Like the rest of the
	// grammar it matches case-insensitively; the canonical uppercase
	// letter is what ends up in the components.
	var rest []string
	switch typ := strings.ToUpper(fields[1]); typ {
	case "A", "S":
		if len(fields) < 4 || !idPattern.MatchString(fields[2]) || !idPattern.MatchString(fields[3]) {
			return Components{}, fmt.Errorf("%w: %q", ErrNotMatched, name)
		}
		c.Type = ItemType(typ)
		c.Object = fields[2]
		c.Step = fields[3]
		rest = fields[4:]
	case "G":
		if !idPattern.MatchString(fields[2]) {
			return Components{}, fmt.Errorf("%w: %q", ErrNotMatched, name)
		}
		c.Type = ItemGeneral
		c.Step = fields[2]
		rest = fields[3:]
	default:
		return Components{}, fmt.Errorf("%w: bad item type in %q", ErrNotMatched, name)
	}

	switch len(rest) {
	case 0:
		// Just project/type/object/step.
	case 1:
		// A single trailing field is a version block when it can be one;
		// only otherwise is it a resource.
		if state, version, ok := g.matchVersionBlock(rest[0]); ok {
			c.State = state
			c.Version = version
		} else if g.validResource(rest[0]) {
			c.Resource = rest[0]
		} else {
			return Components{}, fmt.Errorf("%w: %q", ErrNotMatched, name)
		}
	case 2:
		state, version, ok := g.matchVersionBlock(rest[1])
		if !ok || !g.validResource(rest[0]) {
			return Components{}, fmt.Errorf("%w: %q", ErrNotMatched, name)
		}
		c.Resource = rest[0]
		c.State = state
		c.Version = version
	default:
		return Components{}, fmt.Errorf("%w: %q", ErrNotMatched, name)
	}

	return c, nil
}

// Encode builds a canonical file name from components. It is the left
// inverse of Decode: decoding an encoded name yields equal components.
// The resource string is sanitized, the version block is omitted for a
// negative version, and a leading dot is prepended to the extension when
// missing. An empty extension omits the trailing dot entirely.
func Encode(c Components) string {
	var b strings.Builder
	b.WriteString(c.Project)
	b.WriteByte('_')
	b.WriteString(string(c.Type))

	if c.Type == ItemAsset || c.Type == ItemShot {
		b.WriteByte('_')
		b.WriteString(c.Object)
	}

	b.WriteByte('_')
	b.WriteString(c.Step)

	if resource := SanitizeResource(c.Resource); resource != "" {
		b.WriteByte('_')
		b.WriteString(resource)
	}

	if c.Version >= 0 {
		b.WriteByte('_')
		b.WriteString(c.State)
		fmt.Fprintf(&b, "%03d", c.Version)
	}

	if c.Extension != "" {
		if !strings.HasPrefix(c.Extension, ".") {
			b.WriteByte('.')
		}
		b.WriteString(c.Extension)
	}

	return b.String()
}
