package models_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/headlines/internal/models"
)

func TestLink_IdentityIsURI(t *testing.T) {
	t.Parallel()

	a := models.Link{URI: "https://x/a", Title: "One", Source: "s1"}
	b := models.Link{URI: "https://x/a", Title: "Two", Source: "s2"}
	c := models.Link{URI: "https://x/b", Title: "One", Source: "s1"}

	assert.True(t, a.SameAs(b))
	assert.False(t, a.SameAs(c))
	assert.True(t, a.Less(c))
	assert.False(t, c.Less(a))
	assert.Zero(t, models.CompareURI(a, b))
}

func TestCompareURI_SortsAscending(t *testing.T) {
	t.Parallel()

	links := []models.Link{{URI: "https://c"}, {URI: "https://a"}, {URI: "https://b"}}
	slices.SortFunc(links, models.CompareURI)

	assert.Equal(t, "https://a", links[0].URI)
	assert.Equal(t, "https://b", links[1].URI)
	assert.Equal(t, "https://c", links[2].URI)
}

func TestLink_JSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(models.Link{URI: "https://x", Title: "t", Source: "s"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uri":"https://x","title":"t","source":"s"}`, string(data))
}
