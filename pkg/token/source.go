package token

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Source is one translation unit's text together with a stable identity.
type Source struct {
	Path    string
	Content string
	ID      uint64
}

// NewSource creates a source whose ID is derived from path and content, so
// the same buffer read twice yields the same ID.
func NewSource(path, content string) Source {
	d := xxhash.New()
	_, _ = d.WriteString(path)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(content)
	return Source{Path: path, Content: content, ID: d.Sum64()}
}

// Fingerprint returns the content hash alone, independent of the path
func (s Source) Fingerprint() uint64 {
	return xxhash.Sum64String(s.Content)
}

func (s Source) String() string {
	return fmt.Sprintf("%s#%016x", s.Path, s.ID)
}
