// Package extractor walks a parsed HTML tree and reports anchors whose text or
// href mentions one of a set of keywords.
package extractor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hrefPrefix is matched literally, so "https" and "httpx" both qualify.
const hrefPrefix = "http"

// Match is one qualifying anchor.
type Match struct {
	URI   string
	Title string
}

// Extract visits the tree under root depth-first in document order and calls
// fn once per qualifying anchor before moving on. Nothing is buffered and the
// tree is not modified, so the walk can be repeated.
func Extract(root *html.Node, m *Matcher, fn func(Match)) {
	if root == nil || m == nil || fn == nil {
		return
	}
	walk(root, m, fn)
}

// ExtractAll collects every match under root.
func ExtractAll(root *html.Node, m *Matcher) []Match {
	var matches []Match
	Extract(root, m, func(match Match) {
		matches = append(matches, match)
	})
	return matches
}

func walk(n *html.Node, m *Matcher, fn func(Match)) {
	if match, ok := qualify(n, m); ok {
		fn(match)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, m, fn)
	}
}

func qualify(n *html.Node, m *Matcher) (Match, bool) {
	if n.Type != html.ElementNode || n.DataAtom != atom.A {
		return Match{}, false
	}

	href, ok := attr(n, "href")
	if !ok || !strings.HasPrefix(href, hrefPrefix) {
		return Match{}, false
	}

	title := CollapseWhitespace(textContent(n))
	if title == "" {
		return Match{}, false
	}

	if !m.Matches(title, href) {
		return Match{}, false
	}

	return Match{URI: href, Title: title}, true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// textContent concatenates the text nodes under n, skipping comments.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// CollapseWhitespace replaces each run of whitespace with a single space and
// trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
