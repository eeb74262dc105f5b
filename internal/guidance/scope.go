// Package guidance resolves which instructions apply to a given scope —
// global, a named project, or a named category — and caches the resolved
// sets with TTL and explicit invalidation.
package guidance

import (
	"fmt"
	"strings"
	"time"
)

// ScopeKind is the closed set of instruction applicability domains.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeProject
	ScopeCategory
)

// Scope is the applicability domain of an instruction. Construct values
// with GlobalScope, ProjectScope, or CategoryScope so the name is always
// normalized; switch on Kind is exhaustive over the three variants.
type Scope struct {
	Kind ScopeKind
	Name string // empty for ScopeGlobal
}

// GlobalScope returns the scope that applies everywhere.
func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

// ProjectScope returns the scope for a named project.
func ProjectScope(name string) Scope {
	return Scope{Kind: ScopeProject, Name: normalizeName(name)}
}

// CategoryScope returns the scope for a named category.
func CategoryScope(name string) Scope {
	return Scope{Kind: ScopeCategory, Name: normalizeName(name)}
}

// String renders the scope as a cache-key component, e.g. "project:alpha".
func (s Scope) String() string {
	switch s.Kind {
	case ScopeGlobal:
		return "global"
	case ScopeProject:
		return "project:" + s.Name
	case ScopeCategory:
		return "category:" + s.Name
	default:
		return fmt.Sprintf("unknown(%d)", int(s.Kind))
	}
}

// Instruction is a guidance entry read from the instruction store. The
// resolver only reads instructions; creation and deletion belong to the
// store's own tools.
type Instruction struct {
	ID        string
	Title     string
	Body      string
	Scope     Scope
	Priority  int // 1..5, higher first
	CreatedAt time.Time
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
