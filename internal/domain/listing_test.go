package domain

import (
	"strings"
	"testing"
)

func TestDocument_Layout(t *testing.T) {
	l := Listing{
		ID:          "L1",
		Title:       "Vélo électrique",
		Description: "Très bon état, batterie neuve",
		Price:       799.5,
		Location:    "Paris",
		Criteria: []Criterion{
			{Label: "Autonomie", Value: "80 km"},
			{Label: "Couleur", Value: "noir"},
		},
	}

	want := "Titre : Vélo électrique\n" +
		"Localisation : Paris\n" +
		"Prix : 799.5 €\n" +
		"Caractéristiques :\n" +
		"- Autonomie: 80 km\n" +
		"- Couleur: noir\n" +
		"\nDescription :\n" +
		"Très bon état, batterie neuve"

	if got := l.Document(); got != want {
		t.Errorf("document mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDocument_NoCriteria(t *testing.T) {
	l := Listing{Title: "Table", Location: "Lyon", Price: 50, Description: "En chêne"}

	doc := l.Document()
	if !strings.Contains(doc, "Caractéristiques :\n\nDescription :\n") {
		t.Errorf("empty criteria section malformed:\n%s", doc)
	}
}

func TestDocument_WholePriceRendersWithoutDecimals(t *testing.T) {
	l := Listing{Title: "Chaise", Price: 120}

	if !strings.Contains(l.Document(), "Prix : 120 €") {
		t.Errorf("unexpected price rendering:\n%s", l.Document())
	}
}
