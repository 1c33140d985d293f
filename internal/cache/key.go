package cache

import (
	"fmt"
	"strings"
)

// Key identifies one cached query: an entity type plus ordered scope parameters.
// Two keys are equal when their canonical strings are equal, so
// NewKey("tasks", 42) and NewKey("tasks", "42") resolve to the same entry.
type Key struct {
	Entity string
	Scope  []string
}

func NewKey(entity string, scope ...any) Key {
	return Key{Entity: entity, Scope: stringify(scope)}
}

func (k Key) String() string {
	if len(k.Scope) == 0 {
		return k.Entity
	}
	return k.Entity + "/" + strings.Join(k.Scope, "/")
}

// Pattern selects keys for invalidation. A key matches when it has the same
// entity and its scope starts with the pattern's scope; an empty scope matches
// every key of the entity.
type Pattern struct {
	Entity string
	Scope  []string
}

func Match(entity string, scope ...any) Pattern {
	return Pattern{Entity: entity, Scope: stringify(scope)}
}

// Exact matches a single key and its descendants.
func Exact(k Key) Pattern {
	return Pattern{Entity: k.Entity, Scope: k.Scope}
}

func (p Pattern) Matches(k Key) bool {
	if p.Entity != k.Entity || len(p.Scope) > len(k.Scope) {
		return false
	}
	for i, s := range p.Scope {
		if k.Scope[i] != s {
			return false
		}
	}
	return true
}

func (p Pattern) String() string {
	return Key(p).String() + "/*"
}

func stringify(scope []any) []string {
	out := make([]string, len(scope))
	for i, s := range scope {
		out[i] = fmt.Sprint(s)
	}
	return out
}
