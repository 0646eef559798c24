package rodwrapper

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CleanConfig decides what of a page body reaches the analyzer. Attributes
// are an allow-list: anything not in KeepAttrs is dropped.
type CleanConfig struct {
	DropTags  []string
	KeepAttrs []string
	// DropHiddenInputs removes <input type="hidden">; they hold tokens, not
	// fields a user fills.
	DropHiddenInputs bool
	// MaxBytes caps the rendered output; zero means no cap.
	MaxBytes int
}

var DefaultCleanConfig = CleanConfig{
	DropTags: []string{
		"head", "script", "style", "noscript", "template",
		"svg", "canvas", "iframe", "picture", "video", "audio",
		"link", "meta",
	},
	KeepAttrs: []string{
		// selector material
		"id", "name", "class", "data-testid",
		// field semantics
		"type", "placeholder", "for", "autocomplete", "aria-label", "role",
		"required", "disabled", "value",
		// navigation and submission
		"href", "action", "method",
	},
	DropHiddenInputs: true,
}

// CleanHTML reduces a document to the form-relevant markup of its body. On
// failure the raw input is returned together with the error.
func CleanHTML(rawHTML string, cfg *CleanConfig) (string, error) {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML, fmt.Errorf("parse html: %w", err)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return rawHTML, fmt.Errorf("no <body> in document")
	}

	newPruner(cfg).prune(body)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return rawHTML, fmt.Errorf("render html: %w", err)
	}
	return capBytes(sb.String(), cfg.MaxBytes), nil
}

type pruner struct {
	drop       map[string]bool
	keep       map[string]bool
	dropHidden bool
}

func newPruner(cfg *CleanConfig) *pruner {
	p := &pruner{
		drop:       make(map[string]bool, len(cfg.DropTags)),
		keep:       make(map[string]bool, len(cfg.KeepAttrs)),
		dropHidden: cfg.DropHiddenInputs,
	}
	for _, t := range cfg.DropTags {
		p.drop[strings.ToLower(t)] = true
	}
	for _, a := range cfg.KeepAttrs {
		p.keep[strings.ToLower(a)] = true
	}
	return p
}

func (p *pruner) prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		switch c.Type {
		case html.CommentNode:
			n.RemoveChild(c)
		case html.TextNode:
			text := strings.Join(strings.Fields(c.Data), " ")
			if text == "" {
				n.RemoveChild(c)
			} else {
				c.Data = text
			}
		case html.ElementNode:
			if p.drop[c.Data] || (p.dropHidden && isHiddenInput(c)) {
				n.RemoveChild(c)
				break
			}
			c.Attr = p.attrs(c)
			p.prune(c)
		}

		c = next
	}
}

// attrs keeps allow-listed attributes. A value survives only on controls
// whose value is their visible label.
func (p *pruner) attrs(n *html.Node) []html.Attribute {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if !p.keep[key] {
			continue
		}
		if key == "value" && !labelledByValue(n) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func labelledByValue(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Button, atom.Option:
		return true
	case atom.Input:
		switch strings.ToLower(attr(n, "type")) {
		case "submit", "button", "reset":
			return true
		}
	}
	return false
}

func isHiddenInput(n *html.Node) bool {
	return n.DataAtom == atom.Input && strings.EqualFold(attr(n, "type"), "hidden")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// capBytes cuts s to at most max bytes on a rune boundary.
func capBytes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n<!-- truncated -->"
}
