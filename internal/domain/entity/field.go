package entity

import "strings"

type FieldDescriptor struct {
	ID          string `json:"id"`
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	AriaLabel   string `json:"ariaLabel"`
	LabelText   string `json:"labelText"`
	Visible     bool   `json:"visible"`
	Disabled    bool   `json:"disabled"`
}

// NormalizedType returns the lowercase type attribute, "text" when absent.
func (f FieldDescriptor) NormalizedType() string {
	t := strings.ToLower(strings.TrimSpace(f.Type))
	if t == "" {
		return "text"
	}
	return t
}

// Hint is the lowercase concatenation of name, placeholder, aria-label and
// resolved label text used for keyword classification.
func (f FieldDescriptor) Hint() string {
	return strings.ToLower(strings.Join([]string{f.Name, f.Placeholder, f.AriaLabel, f.LabelText}, " "))
}
