// FILE: ziplog/src/internal/core/levels.go
package core

import (
	"fmt"
	"strings"
)

// DefaultLevelNames is the default level set, lowest severity first
var DefaultLevelNames = []string{"silly", "debug", "verbose", "info", "warn", "error"}

// Levels is an ordered level set used for filtering
type Levels struct {
	names []string
	rank  map[string]int
}

// NewLevels builds a level set from names ordered lowest severity first
func NewLevels(names ...string) (*Levels, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty level set", ErrInvalidArgument)
	}

	l := &Levels{
		names: make([]string, 0, len(names)),
		rank:  make(map[string]int, len(names)),
	}
	for i, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return nil, fmt.Errorf("%w: empty level name at position %d", ErrInvalidArgument, i)
		}
		if _, dup := l.rank[name]; dup {
			return nil, fmt.Errorf("%w: duplicate level name %q", ErrInvalidArgument, name)
		}
		l.rank[name] = i
		l.names = append(l.names, name)
	}
	return l, nil
}

// DefaultLevels returns the silly..error level set
func DefaultLevels() *Levels {
	l, _ := NewLevels(DefaultLevelNames...)
	return l
}

// Names returns the level names lowest severity first
func (l *Levels) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Has reports whether name is a member of the set
func (l *Levels) Has(name string) bool {
	_, ok := l.rank[strings.ToLower(name)]
	return ok
}

// Canonical returns the lower-case member name or ErrInvalidArgument
func (l *Levels) Canonical(name string) (string, error) {
	lower := strings.ToLower(name)
	if _, ok := l.rank[lower]; !ok {
		return "", fmt.Errorf("%w: unknown log level %q", ErrInvalidArgument, name)
	}
	return lower, nil
}

// Rank returns the position of name in the set
func (l *Levels) Rank(name string) (int, bool) {
	r, ok := l.rank[strings.ToLower(name)]
	return r, ok
}

// AtLeast reports whether level is at or above min. Unknown levels never pass;
// an empty min passes every known level.
func (l *Levels) AtLeast(level, min string) bool {
	r, ok := l.Rank(level)
	if !ok {
		return false
	}
	if min == "" {
		return true
	}
	m, ok := l.Rank(min)
	if !ok {
		return false
	}
	return r >= m
}

// ErrorLevel returns "error" if present, otherwise the most severe level
func (l *Levels) ErrorLevel() string {
	if _, ok := l.rank["error"]; ok {
		return "error"
	}
	return l.names[len(l.names)-1]
}

// Lowest returns the least severe level
func (l *Levels) Lowest() string {
	return l.names[0]
}
