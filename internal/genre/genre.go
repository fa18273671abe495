// Package genre provides the genre picker taxonomy and slug normalization.
//
// Genres on a book record are an open vocabulary: any non-empty string a user
// or import supplies is accepted. The list here only feeds UI pickers and
// grouping labels.
package genre

// Known is the default picker list, in display order.
var Known = []string{
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Thriller",
	"Romance",
	"Horror",
	"Historical Fiction",
	"Literary Fiction",
	"Young Adult",
	"Nonfiction",
	"Biography",
	"Memoir",
	"Poetry",
	"Graphic Novel",
	"Classics",
	"Self Help",
}

// DefaultDisplay is the label shown for genres outside the known list.
const DefaultDisplay = "Other"

// IsKnown reports whether the genre is in the picker list (exact match).
func IsKnown(name string) bool {
	for _, g := range Known {
		if g == name {
			return true
		}
	}
	return false
}

// Display returns the picker label for a genre: the genre itself when known,
// otherwise the default bucket label.
func Display(name string) string {
	if IsKnown(name) {
		return name
	}
	return DefaultDisplay
}
