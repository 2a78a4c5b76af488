package domain

import (
	"fmt"
	"strings"
)

// Criterion is one structured attribute of a listing ("Surface: 120 m²").
type Criterion struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Listing is an immutable snapshot of a marketplace announcement, owned by the
// document store and referenced by ID inside the search core.
type Listing struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Location    string      `json:"location"`
	Category    string      `json:"category,omitempty"`
	Criteria    []Criterion `json:"criteria,omitempty"`
}

// Document renders the canonical text form of a listing. The same layout is
// used when building the vector index and when matching lexically, so a
// substring hit against the index content and against this text agree.
func (l Listing) Document() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Titre : %s\n", l.Title)
	fmt.Fprintf(&b, "Localisation : %s\n", l.Location)
	fmt.Fprintf(&b, "Prix : %g €\n", l.Price)
	b.WriteString("Caractéristiques :\n")
	for _, c := range l.Criteria {
		fmt.Fprintf(&b, "- %s: %s\n", c.Label, c.Value)
	}
	b.WriteString("\nDescription :\n")
	b.WriteString(l.Description)
	return b.String()
}
