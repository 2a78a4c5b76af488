package openai

import "testing"

func TestParseVariants(t *testing.T) {
	content := "1. voiture rouge bon prix\n- automobile rouge économique\n\n\"véhicule rouge pas cher\"\nvoiture rouge pas cher\nVoiture rouge bon prix\n"

	variants := parseVariants(content, "voiture rouge pas cher", 5)

	want := []string{
		"voiture rouge bon prix",
		"automobile rouge économique",
		"véhicule rouge pas cher",
	}
	if len(variants) != len(want) {
		t.Fatalf("got %d variants %v, want %d", len(variants), variants, len(want))
	}
	for i := range want {
		if variants[i] != want[i] {
			t.Errorf("variant %d = %q, want %q", i, variants[i], want[i])
		}
	}
}

func TestParseVariants_Limit(t *testing.T) {
	content := "a\nb\nc\nd\ne\nf"
	variants := parseVariants(content, "q", 3)
	if len(variants) != 3 {
		t.Fatalf("got %d variants, want 3", len(variants))
	}
}

func TestParseVariants_EmptyCompletion(t *testing.T) {
	if got := parseVariants("\n\n", "q", 4); len(got) != 0 {
		t.Fatalf("expected no variants, got %v", got)
	}
}
