package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ChangeType classifies one entry in a canvas diff.
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeModified  ChangeType = "modified"
	ChangeRemoved   ChangeType = "removed"
	ChangePreserved ChangeType = "preserved"
)

// IsValid checks if the change type is valid
func (c ChangeType) IsValid() bool {
	return c == ChangeAdded || c == ChangeModified || c == ChangeRemoved || c == ChangePreserved
}

// CanvasChange is one entry in the diff between two canvas versions.
type CanvasChange struct {
	Section     CanvasSection `json:"section"`
	ChangeType  ChangeType    `json:"change_type"`
	Description string        `json:"description"`
	OldValue    string        `json:"old_value,omitempty"`
	NewValue    string        `json:"new_value,omitempty"`
}

// ParseVersion splits a "major.minor" document version string.
// Returns an error for anything that is not two non-negative integers.
func ParseVersion(v string) (major, minor int, err error) {
	parts := strings.SplitN(v, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid document version %q", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return 0, 0, fmt.Errorf("invalid document version %q", v)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return 0, 0, fmt.Errorf("invalid document version %q", v)
	}
	return major, minor, nil
}

// BumpVersion increments a document version. Minor bumps add 0.1;
// major bumps move to the next whole version. Unparseable versions
// restart at 1.1 (minor) or 2.0 (major).
func BumpVersion(v string, major bool) string {
	ma, mi, err := ParseVersion(v)
	if err != nil {
		if major {
			return "2.0"
		}
		return "1.1"
	}
	if major {
		return fmt.Sprintf("%d.0", ma+1)
	}
	return fmt.Sprintf("%d.%d", ma, mi+1)
}

// VersionGreater reports whether version a is strictly greater than b.
// Unparseable versions compare as not greater.
func VersionGreater(a, b string) bool {
	ma, mia, err := ParseVersion(a)
	if err != nil {
		return false
	}
	mb, mib, err := ParseVersion(b)
	if err != nil {
		return false
	}
	if ma != mb {
		return ma > mb
	}
	return mia > mib
}
