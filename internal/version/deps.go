package version

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Relation constrains the installed version of a dependency.
type Relation int

const (
	EQ Relation = iota
	GT
	GE
	LT
	LE
)

// String returns the canonical operator surface for the relation.
func (r Relation) String() string {
	switch r {
	case EQ:
		return "@"
	case GE:
		return ">="
	case LE:
		return "<="
	case GT:
		return ">"
	case LT:
		return "<"
	}
	return "?"
}

// Dependency is a constraint on a named package.
type Dependency struct {
	Name    string
	Rel     Relation
	Version Version
}

// operators in precedence order: at equal split positions the earlier entry
// wins, so ">=" is recognized before ">".
var operators = []struct {
	surface string
	rel     Relation
}{
	{"@", EQ},
	{"=", EQ},
	{">=", GE},
	{"<=", LE},
	{">", GT},
	{"<", LT},
}

// ParseDep parses a single dependency token such as "b>=0.1.0", "c@2.1.0" or
// a bare name. A bare name means "any version newer than 0".
func ParseDep(token string) (Dependency, error) {
	for i := 0; i < len(token); i++ {
		for _, op := range operators {
			if !strings.HasPrefix(token[i:], op.surface) {
				continue
			}
			name := token[:i]
			rest := token[i+len(op.surface):]
			if name == "" {
				return Dependency{}, fmt.Errorf("invalid dependency %q: missing package name", token)
			}
			v, err := Parse(rest)
			if err != nil {
				return Dependency{}, fmt.Errorf("invalid dependency %q: %w", token, err)
			}
			return Dependency{Name: name, Rel: op.rel, Version: v}, nil
		}
	}
	if token == "" {
		return Dependency{}, fmt.Errorf("invalid dependency: empty token")
	}
	return Dependency{Name: token, Rel: GT, Version: Version{0}}, nil
}

// ParseDeps parses a whitespace-separated dependency string. All malformed
// tokens are reported, not just the first.
func ParseDeps(s string) ([]Dependency, error) {
	var (
		deps []Dependency
		errs error
	)
	for _, token := range strings.Fields(s) {
		dep, err := ParseDep(token)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		deps = append(deps, dep)
	}
	if errs != nil {
		return nil, errs
	}
	return deps, nil
}

// String renders the dependency in its canonical token form. The "newer than
// 0" constraint prints as a bare name, matching how it parses.
func (d Dependency) String() string {
	if d.Rel == GT && d.Version.Compare(Version{0}) == 0 {
		return d.Name
	}
	return d.Name + d.Rel.String() + d.Version.String()
}

// FormatDeps renders dependencies back to the serialized catalog form.
func FormatDeps(deps []Dependency) string {
	tokens := make([]string, len(deps))
	for i, d := range deps {
		tokens[i] = d.String()
	}
	return strings.Join(tokens, " ")
}

// Satisfies reports whether an existing installed version meets the
// constraint (required, rel). For example b>=0.1.0 is satisfied by any
// installed b at 0.1.0 or newer.
func Satisfies(required, existing Version, rel Relation) bool {
	switch required.Compare(existing) {
	case 0:
		return rel == EQ || rel == GE || rel == LE
	case 1: // existing is older than required
		return rel == LE || rel == LT
	default: // existing is newer than required
		return rel == GE || rel == GT
	}
}
