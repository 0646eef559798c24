// Package classifier maps a snapshot of one form control to the value that
// should be typed into it.
package classifier

import (
	"strings"

	"form-agent/internal/domain/entity"
)

// GenericTextValue is injected into text and search inputs nothing else claims.
const GenericTextValue = "Sample"

// Source tells which step of the resolution produced a value.
type Source string

const (
	SourceNone     Source = ""
	SourceExactKey Source = "exact_key"
	SourceRule     Source = "rule"
)

// Classification is either None or a value for a semantic key.
type Classification struct {
	Key    string
	Value  string
	Rule   string
	Source Source
}

func None() Classification {
	return Classification{}
}

func (c Classification) IsNone() bool {
	return c.Source == SourceNone
}

// Input is what a rule sees: the normalized type and the lowercase hint.
type Input struct {
	Type string
	Hint string
}

// Rule pairs a predicate with the semantic key it selects. Literal, when
// set, is used instead of a ValueSource lookup.
type Rule struct {
	Name    string
	Match   func(in Input) bool
	Key     func(in Input) string
	Literal string
}

var (
	emailWords     = []string{"email", "e-mail"}
	passwordWords  = []string{"password", "passcode"}
	confirmWords   = []string{"confirm", "retype", "repeat"}
	firstNameWords = []string{"first name", "first_name", "firstname", "given"}
	lastNameWords  = []string{"last name", "last_name", "lastname", "surname", "family"}
	fullNameWords  = []string{"full name", "name"}
	phoneWords     = []string{"phone", "mobile", "telephone"}
	usernameWords  = []string{"username", "user name", "login id"}
	companyWords   = []string{"company", "organization"}
	addressWords   = []string{"address", "street"}
	cityWords      = []string{"city", "town"}
	zipWords       = []string{"zip", "postal", "postcode"}

	notPersonName = []string{"username", "user name", "login id", "company", "organization"}
)

// nonTextTypes never receive keyword-derived values.
var nonTextTypes = map[string]bool{
	"checkbox": true,
	"radio":    true,
	"submit":   true,
	"button":   true,
	"reset":    true,
	"image":    true,
	"range":    true,
	"color":    true,
}

var rules = []Rule{
	{
		Name:  "email",
		Match: func(in Input) bool { return in.Type == "email" || keyword(in, emailWords...) },
		Key:   fixed(entity.KeyEmail),
	},
	{
		Name:  "password",
		Match: func(in Input) bool { return in.Type == "password" || keyword(in, passwordWords...) },
		Key: func(in Input) string {
			if containsAny(in.Hint, confirmWords...) {
				return entity.KeyConfirmPassword
			}
			return entity.KeyPassword
		},
	},
	{Name: "first_name", Match: keywords(firstNameWords...), Key: fixed(entity.KeyFirstName)},
	{Name: "last_name", Match: keywords(lastNameWords...), Key: fixed(entity.KeyLastName)},
	{
		Name: "full_name",
		// "name" alone is generic: usernames and company names belong to
		// their own categories further down.
		Match: func(in Input) bool {
			if keyword(in, "full name") {
				return true
			}
			return keyword(in, fullNameWords...) && !containsAny(in.Hint, notPersonName...)
		},
		Key: fixed(entity.KeyFullName),
	},
	{
		Name:  "phone",
		Match: func(in Input) bool { return in.Type == "tel" || keyword(in, phoneWords...) },
		Key:   fixed(entity.KeyPhone),
	},
	{Name: "username", Match: keywords(usernameWords...), Key: fixed(entity.KeyUsername)},
	{Name: "company", Match: keywords(companyWords...), Key: fixed(entity.KeyCompany)},
	{Name: "address", Match: keywords(addressWords...), Key: fixed(entity.KeyAddress)},
	{Name: "city", Match: keywords(cityWords...), Key: fixed(entity.KeyCity)},
	{Name: "zip", Match: keywords(zipWords...), Key: fixed(entity.KeyZip)},
	{
		Name:    "generic_text",
		Match:   func(in Input) bool { return in.Type == "text" || in.Type == "search" },
		Key:     fixed(""),
		Literal: GenericTextValue,
	},
}

// Rules returns the ordered rule list. The slice is a copy.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify resolves the value for one control. Hidden and file inputs are
// never candidates.
func Classify(field entity.FieldDescriptor, values entity.ValueSource) Classification {
	typ := field.NormalizedType()
	if typ == "hidden" || typ == "file" {
		return None()
	}

	for _, attr := range []string{field.Name, field.Placeholder, field.LabelText} {
		if attr == "" {
			continue
		}
		if v, ok := values.Lookup(attr); ok {
			return Classification{Key: attr, Value: v, Rule: "exact_key", Source: SourceExactKey}
		}
	}

	in := Input{Type: typ, Hint: field.Hint()}
	for _, r := range rules {
		if !r.Match(in) {
			continue
		}
		if r.Literal != "" {
			return Classification{Value: r.Literal, Rule: r.Name, Source: SourceRule}
		}
		key := r.Key(in)
		v, ok := values.Lookup(key)
		if !ok {
			return None()
		}
		return Classification{Key: key, Value: v, Rule: r.Name, Source: SourceRule}
	}

	return None()
}

func fixed(key string) func(Input) string {
	return func(Input) string { return key }
}

func keywords(words ...string) func(Input) bool {
	return func(in Input) bool { return keyword(in, words...) }
}

// keyword matches the hint unless the control's type can't hold text.
func keyword(in Input, words ...string) bool {
	if nonTextTypes[in.Type] {
		return false
	}
	return containsAny(in.Hint, words...)
}

func containsAny(text string, needles ...string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(t, n) {
			return true
		}
	}
	return false
}
