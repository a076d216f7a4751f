package lookup

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/BTreeMap/DefineBot/internal/models"
)

// partOfSpeechIDs are the heading anchors a definition section can carry.
// The first one found in document order wins.
var partOfSpeechIDs = map[string]bool{
	"Noun":         true,
	"Pronoun":      true,
	"Verb":         true,
	"Adjective":    true,
	"Adverb":       true,
	"Conjunction":  true,
	"Preposition":  true,
	"Interjection": true,
}

// extractDefinition pulls the first definition set out of a Wiktionary
// page: the part-of-speech heading span, the headword paragraph that
// follows it, and the ordered list of senses. Fragments keep their raw
// markup; conversion is the formatter's concern.
func extractDefinition(page []byte) (*models.Definition, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}

	nodes := flatten(root)
	start := -1
	for i, n := range nodes {
		if n.Type == html.ElementNode && n.Data == "span" && partOfSpeechIDs[attr(n, "id")] {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("no part-of-speech heading on page")
	}
	heading := nodes[start]

	var body, headword string
	for _, n := range nodes[start+1:] {
		if n.Type != html.ElementNode {
			continue
		}
		if body == "" && n.Data == "ol" {
			body = render(n)
		}
		if headword == "" && n.Data == "p" {
			headword = render(n)
		}
		if body != "" && headword != "" {
			break
		}
	}
	if body == "" {
		return nil, fmt.Errorf("no definition list after %s heading", text(heading))
	}

	return &models.Definition{
		Headword:  headword,
		WordClass: text(heading),
		Body:      body,
	}, nil
}

// flatten returns all nodes of the tree in document order.
func flatten(root *html.Node) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		nodes = append(nodes, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return nodes
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// render serializes a node back to markup.
func render(n *html.Node) string {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// text concatenates the text descendants of a node.
func text(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
