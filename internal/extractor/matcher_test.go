package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/headlines/internal/extractor"
)

func TestContainsFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s, substr string
		want      bool
	}{
		{"Climate change", "climate", true},
		{"CLIMATE", "cLiMaTe", true},
		{"weather", "climate", false},
		{"short", "much longer needle", false},
		{"anything", "", true},
		{"Klimaänderung", "KLIMAänderung", true},
		{"KLIMAÄNDERUNG", "klimaänderung", false},
		{"Éclair", "éclair", false},
		{"café au lait", "CAFÉ", false},
		{"café au lait", "CAFé", true},
		{"a@b", "a`b", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractor.ContainsFold(tt.s, tt.substr), "ContainsFold(%q, %q)", tt.s, tt.substr)
	}
}

func TestMatcher_MatchesTextOrHref(t *testing.T) {
	t.Parallel()

	m := extractor.NewMatcher([]string{"climate", "", "flood"})

	assert.Equal(t, []string{"climate", "flood"}, m.Keywords())
	assert.True(t, m.Matches("Floods in the north", "https://n/1"))
	assert.True(t, m.Matches("Read more", "https://n/climate/1"))
	assert.False(t, m.Matches("Sport", "https://n/sport"))
}

func TestMatcher_EmptyKeywordsNeverMatch(t *testing.T) {
	t.Parallel()

	m := extractor.NewMatcher([]string{""})
	assert.False(t, m.Matches("anything", "https://n"))
}
