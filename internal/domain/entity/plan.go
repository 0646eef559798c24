package entity

import "strings"

type ActionItem struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Action      string  `json:"action"`
	Value       *string `json:"value,omitempty"`
}

func (a ActionItem) IsClick() bool {
	return strings.EqualFold(strings.TrimSpace(a.Action), "click")
}

type FormFieldItem struct {
	Type           string `json:"type"`
	FieldType      string `json:"fieldType"`
	Description    string `json:"description"`
	Label          string `json:"label,omitempty"`
	Selector       string `json:"selector,omitempty"`
	SuggestedValue string `json:"suggestedValue,omitempty"`
}

// Hint joins the textual clues the analyzer gave about this field.
func (f FormFieldItem) Hint() string {
	return strings.ToLower(strings.Join([]string{f.FieldType, f.Label, f.Description}, " "))
}

type SubmitTarget struct {
	Selector string `json:"selector,omitempty"`
	Text     string `json:"text,omitempty"`
}

type FillPlan struct {
	FormFound           bool            `json:"formFound"`
	AuthElementsVisible bool            `json:"authElementsVisible"`
	ElementsToClick     []ActionItem    `json:"elementsToClick"`
	FormElements        []FormFieldItem `json:"formElements"`
	SubmitButton        *SubmitTarget   `json:"submitButton,omitempty"`
	NextSteps           string          `json:"nextSteps"`
	PageAnalysis        string          `json:"pageAnalysis"`
}

// UnknownFillPlan is the canonical plan used whenever the analyzer response
// cannot be decoded.
func UnknownFillPlan() *FillPlan {
	return &FillPlan{
		ElementsToClick: []ActionItem{},
		FormElements:    []FormFieldItem{},
		NextSteps:       "Look for authentication elements manually",
		PageAnalysis:    "AI could not parse the page structure",
	}
}

// IsUnknown reports whether the plan carries no actionable signal.
func (p *FillPlan) IsUnknown() bool {
	return p == nil || (!p.FormFound && !p.AuthElementsVisible)
}
