// Package models holds the value types shared by the registry, API and CLI.
package models

// Link is one headline discovered on a source's page.
// Identity is the URI alone; two links with the same URI are duplicates
// whatever their titles say.
type Link struct {
	URI    string `json:"uri"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Less orders links by URI.
func (l Link) Less(other Link) bool {
	return l.URI < other.URI
}

// SameAs reports whether both links point at the same URI.
func (l Link) SameAs(other Link) bool {
	return l.URI == other.URI
}

// CompareURI is a three-way comparison by URI for slices.SortFunc.
func CompareURI(a, b Link) int {
	switch {
	case a.URI < b.URI:
		return -1
	case a.URI > b.URI:
		return 1
	default:
		return 0
	}
}
