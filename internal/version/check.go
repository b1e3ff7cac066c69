package version

import "sort"

// Installed is one package in the dependency-check view.
type Installed struct {
	Version Version
	Deps    []Dependency
}

// Violation is a dependency that the view does not satisfy.
type Violation struct {
	Offender string     // package declaring the dependency
	Dep      Dependency // the failed constraint
	Missing  bool       // named package absent from the view
	Found    Version    // installed version when present but unsatisfying
}

// Check walks every package in the view and reports each dependency that is
// absent or whose installed version fails its constraint. Packages are
// visited in name order, dependencies in declared order. Cycles are not an
// error; only per-edge satisfaction is checked.
func Check(view map[string]Installed) []Violation {
	names := make([]string, 0, len(view))
	for name := range view {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []Violation
	for _, name := range names {
		for _, dep := range view[name].Deps {
			target, ok := view[dep.Name]
			if !ok {
				violations = append(violations, Violation{Offender: name, Dep: dep, Missing: true})
				continue
			}
			if !Satisfies(dep.Version, target.Version, dep.Rel) {
				violations = append(violations, Violation{Offender: name, Dep: dep, Found: target.Version})
			}
		}
	}
	return violations
}
