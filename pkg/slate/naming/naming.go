// Package naming implements the canonical file-name convention used across
// slate-managed production trees. A managed name encodes the project, item
// type, object, production step, optional resource string, and an optional
// version block, followed by the file extension:
//
//	project_TYPE[_object]_step[_resource][_statePREFIXdigits].ext
//
// The set of valid version-block prefixes is not fixed: it is assembled at
// runtime from the configured workflow states plus a few fixed prefixes, so
// all decoding goes through a Grammar value built from that token list.
package naming

import (
	"errors"
	"fmt"
)

// ItemType identifies what kind of production item a name refers to.
type ItemType string

// Item types as encoded in file names.
const (
	ItemGeneral ItemType = "G"
	ItemAsset   ItemType = "A"
	ItemShot    ItemType = "S"
)

// String returns a human-readable name for the item type.
func (t ItemType) String() string {
	switch t {
	case ItemGeneral:
		return "general"
	case ItemAsset:
		return "asset"
	case ItemShot:
		return "shot"
	default:
		return "unknown"
	}
}

// ParseItemType parses a single-letter type code (case-insensitive).
func ParseItemType(s string) (ItemType, error) {
	switch s {
	case "G", "g", "general":
		return ItemGeneral, nil
	case "A", "a", "asset":
		return ItemAsset, nil
	case "S", "s", "shot":
		return ItemShot, nil
	default:
		return "", fmt.Errorf("%w: item type %q", ErrNotMatched, s)
	}
}

// NoVersion is the sentinel version meaning "no version block present".
const NoVersion = -1

// ErrNotMatched indicates that a name does not conform to the grammar.
// Decode-dependent operations return it for any malformed name; callers
// typically treat it as "not a managed file" rather than a hard failure.
var ErrNotMatched = errors.New("name does not match the naming convention")

// Components holds the decoded fields of a managed file name.
// Values are comparable; two Components are equal iff every field is equal.
type Components struct {
	// Project is the project short name (1-10 identifier characters).
	Project string

	// Type is the item type letter encoded in the name.
	Type ItemType

	// Object is the asset or shot short name. Empty for general items.
	Object string

	// Step is the production step short name.
	Step string

	// Resource distinguishes secondary working files from the main one.
	// Empty for the main working file.
	Resource string

	// State is the version-block prefix as written in the name (a workflow
	// state short name or a fixed prefix such as "v"). Empty when the name
	// has no version block or the block has a bare number.
	State string

	// Version is the version number, or NoVersion when the name carries
	// no version block.
	Version int

	// Extension is the file extension without the leading dot. It may
	// itself contain dots ("tar.gz").
	Extension string
}

// SameLineage reports whether two decoded names belong to the same logical
// working file. State and version are deliberately excluded: versions and
// states of one file are siblings of each other.
func (c Components) SameLineage(other Components) bool {
	return c.Project == other.Project &&
		c.Type == other.Type &&
		c.Object == other.Object &&
		c.Step == other.Step &&
		c.Resource == other.Resource
}

// Bump returns a copy with the version incremented by one. A missing or
// non-positive version becomes 1, so bumping an unversioned name yields the
// first version.
func (c Components) Bump() Components {
	if c.Version <= 0 {
		c.Version = 1
	} else {
		c.Version++
	}
	return c
}

// WithoutVersion returns a copy with the version block removed.
func (c Components) WithoutVersion() Components {
	c.State = ""
	c.Version = NoVersion
	return c
}
