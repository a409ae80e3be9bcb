package core

import "strings"

// DefaultModes and DefaultAccounts are used when no catalog is configured.
var (
	DefaultModes    = []string{"Cash", "Online"}
	DefaultAccounts = []string{"A", "S", "C", "O"}
)

// Catalog holds the fixed sets a user picks from while building an entry.
type Catalog struct {
	Modes    []string
	Accounts []string
}

// DefaultCatalog returns a catalog with the default modes and accounts.
func DefaultCatalog() Catalog {
	return NewCatalog(DefaultModes, DefaultAccounts)
}

// NewCatalog trims and dedupes both sets, keeping their order. An empty set
// falls back to its default.
func NewCatalog(modes, accounts []string) Catalog {
	m := dedupe(modes)
	if len(m) == 0 {
		m = append([]string(nil), DefaultModes...)
	}
	a := dedupe(accounts)
	if len(a) == 0 {
		a = append([]string(nil), DefaultAccounts...)
	}
	return Catalog{Modes: m, Accounts: a}
}

func (c Catalog) HasMode(v string) bool {
	return contains(c.Modes, v)
}

func (c Catalog) HasAccount(v string) bool {
	return contains(c.Accounts, v)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
