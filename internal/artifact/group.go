package artifact

import "sort"

// Group maps a package name to every identity carrying that name.
type Group map[string][]Identity

// GroupByName buckets ids by package name, preserving input order within a
// bucket.
func GroupByName(ids []Identity) Group {
	g := make(Group)
	for _, id := range ids {
		g[id.Name] = append(g[id.Name], id)
	}
	return g
}

// Names returns the package names in sorted order.
func (g Group) Names() []string {
	names := make([]string, 0, len(g))
	for n := range g {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
