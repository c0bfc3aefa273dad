package extractor_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/jonesrussell/north-cloud/headlines/internal/extractor"
)

func parse(t *testing.T, doc string) *html.Node {
	t.Helper()

	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func TestExtract_SchemeCheckAndDuplicates(t *testing.T) {
	t.Parallel()

	root := parse(t, `<html><body>
		<a href="http://x/a">Climate now</a>
		<a href="http://x/a">Climate now</a>
		<a href="/relative">Weather</a>
	</body></html>`)

	matches := extractor.ExtractAll(root, extractor.NewMatcher([]string{"climate"}))

	require.Len(t, matches, 2, "extractor reports duplicates; dedup happens downstream")
	for _, m := range matches {
		assert.Equal(t, "http://x/a", m.URI)
		assert.Equal(t, "Climate now", m.Title)
	}
}

func TestExtract_Predicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		anchor  string
		matched bool
	}{
		{name: "keyword in text", anchor: `<a href="https://n/1">Climate talks</a>`, matched: true},
		{name: "keyword in href only", anchor: `<a href="https://n/climate-story">Read more</a>`, matched: true},
		{name: "ascii case folded", anchor: `<a href="https://n/2">CLIMATE CRISIS</a>`, matched: true},
		{name: "loose http prefix", anchor: `<a href="httpfoo/climate">Climate</a>`, matched: true},
		{name: "uppercase scheme rejected", anchor: `<a href="HTTP://n/3">Climate</a>`, matched: false},
		{name: "relative href rejected", anchor: `<a href="/climate">Climate</a>`, matched: false},
		{name: "missing href", anchor: `<a name="x">Climate</a>`, matched: false},
		{name: "empty text", anchor: `<a href="https://n/climate"></a>`, matched: false},
		{name: "whitespace only text", anchor: "<a href=\"https://n/climate\"> \n\t </a>", matched: false},
		{name: "image only anchor", anchor: `<a href="https://n/climate"><img src="x.png"></a>`, matched: false},
		{name: "no keyword", anchor: `<a href="https://n/sport">Football</a>`, matched: false},
		{name: "not an anchor", anchor: `<link href="https://n/climate">`, matched: false},
	}

	m := extractor.NewMatcher([]string{"climate"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			matches := extractor.ExtractAll(parse(t, "<body>"+tt.anchor+"</body>"), m)
			if tt.matched {
				assert.Len(t, matches, 1)
			} else {
				assert.Empty(t, matches)
			}
		})
	}
}

func TestExtract_CollapsesWhitespaceInTitle(t *testing.T) {
	t.Parallel()

	root := parse(t, "<a href=\"https://n/1\">  Climate\n\t  <b>summit</b>   ends  </a>")
	matches := extractor.ExtractAll(root, extractor.NewMatcher([]string{"summit"}))

	require.Len(t, matches, 1)
	assert.Equal(t, "Climate summit ends", matches[0].Title)
}

func TestExtract_DocumentOrder(t *testing.T) {
	t.Parallel()

	root := parse(t, `<body>
		<div><a href="https://n/1">news one</a>
			<section><a href="https://n/2">news two</a></section>
		</div>
		<a href="https://n/3">news three</a>
	</body>`)

	var got []string
	extractor.Extract(root, extractor.NewMatcher([]string{"news"}), func(m extractor.Match) {
		got = append(got, m.URI)
	})

	assert.Equal(t, []string{"https://n/1", "https://n/2", "https://n/3"}, got)
}

func TestExtract_IsDeterministicAndDoesNotMutate(t *testing.T) {
	t.Parallel()

	root := parse(t, `<body><a href="https://n/b">Climate B</a><p>x</p><a href="https://n/a">Climate A</a></body>`)

	var before bytes.Buffer
	require.NoError(t, html.Render(&before, root))

	m := extractor.NewMatcher([]string{"climate"})
	first := extractor.ExtractAll(root, m)
	second := extractor.ExtractAll(root, m)

	var after bytes.Buffer
	require.NoError(t, html.Render(&after, root))

	assert.Equal(t, first, second)
	assert.Equal(t, before.String(), after.String())
}

func TestExtract_NilArgumentsAreNoOps(t *testing.T) {
	t.Parallel()

	called := false
	fn := func(extractor.Match) { called = true }

	extractor.Extract(nil, extractor.NewMatcher([]string{"x"}), fn)
	extractor.Extract(parse(t, `<a href="https://x">x</a>`), nil, fn)
	assert.False(t, called)
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", extractor.CollapseWhitespace("  a \n b\t\tc  "))
	assert.Empty(t, extractor.CollapseWhitespace(" \n\t "))
}
