// Package item defines the media items a ranking session operates on.
package item

import "strings"

// Source identifies where an item entered the session from.
type Source string

// Known item sources.
const (
	SourceCatalog Source = "catalog"
	SourceImport  Source = "import"
)

// Item is a single rankable media entry. Title is the stable identity and is
// used as a map key everywhere; Display is what a UI shows and Image names the
// poster asset by filename only.
type Item struct {
	Title   string `json:"title"`
	Display string `json:"display"`
	Image   string `json:"image"`
	Year    *int   `json:"year,omitempty"`
	Source  Source `json:"source,omitempty"`
}

// Dedupe drops items with empty titles and case-insensitive duplicate titles,
// keeping the first occurrence. Order is otherwise preserved.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		it.Title = title
		out = append(out, it)
	}
	return out
}

// Titles extracts the title list in item order.
func Titles(items []Item) []string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		if it.Title != "" {
			titles = append(titles, it.Title)
		}
	}
	return titles
}

// TitleSet builds a membership set over the current titles.
func TitleSet(items []Item) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Title != "" {
			set[it.Title] = struct{}{}
		}
	}
	return set
}
