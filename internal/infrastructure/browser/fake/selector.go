package fake

import (
	"regexp"
	"strings"
)

var (
	attrRe  = regexp.MustCompile(`\[\s*([a-zA-Z0-9_-]+)\s*(?:([*^$]?=)\s*["']?([^"'\]]*)["']?)?\s*\]`)
	tokenRe = regexp.MustCompile(`[.#][a-zA-Z0-9_-]+`)
)

type attrCond struct {
	name, op, value string
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
}

// parseSelector understands the subset of CSS the strategies use: tag, #id,
// .class and [attr], [attr=v], [attr*=v], [attr^=v], [attr$=v], joined by commas.
func parseSelector(sel string) []simpleSelector {
	var out []simpleSelector
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var s simpleSelector
		for _, m := range attrRe.FindAllStringSubmatch(part, -1) {
			s.attrs = append(s.attrs, attrCond{name: strings.ToLower(m[1]), op: m[2], value: m[3]})
		}
		rest := attrRe.ReplaceAllString(part, "")

		for _, tok := range tokenRe.FindAllString(rest, -1) {
			if tok[0] == '#' {
				s.id = tok[1:]
			} else {
				s.classes = append(s.classes, tok[1:])
			}
		}
		s.tag = strings.ToLower(strings.TrimSpace(tokenRe.ReplaceAllString(rest, "")))
		out = append(out, s)
	}
	return out
}

func (s simpleSelector) matches(el *Element) bool {
	if s.tag != "" && s.tag != "*" && s.tag != el.Tag {
		return false
	}
	if s.id != "" && el.attr("id") != s.id {
		return false
	}
	for _, c := range s.classes {
		if !hasClass(el.attr("class"), c) {
			return false
		}
	}
	for _, a := range s.attrs {
		v, ok := el.Attrs[a.name]
		if !ok {
			return false
		}
		switch a.op {
		case "":
		case "=":
			if v != a.value {
				return false
			}
		case "*=":
			if !strings.Contains(v, a.value) {
				return false
			}
		case "^=":
			if !strings.HasPrefix(v, a.value) {
				return false
			}
		case "$=":
			if !strings.HasSuffix(v, a.value) {
				return false
			}
		}
	}
	return true
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
