package assisted

import (
	"encoding/json"
	"fmt"
	"strings"

	"form-agent/internal/domain/entity"
)

// PlanParseError reports an analyzer response that does not hold a usable
// FillPlan.
type PlanParseError struct {
	Reason string
	Err    error
}

func (e *PlanParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse fill plan: %s: %v", e.Reason, e.Err)
	}
	return "parse fill plan: " + e.Reason
}

func (e *PlanParseError) Unwrap() error {
	return e.Err
}

// ParseFillPlan decodes the first balanced JSON object found in response.
// Text around the object (prose, code fences) is ignored.
func ParseFillPlan(response string) (*entity.FillPlan, error) {
	raw, ok := firstObject(response)
	if !ok {
		return nil, &PlanParseError{Reason: "no JSON object in response"}
	}

	var plan entity.FillPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, &PlanParseError{Reason: "invalid JSON", Err: err}
	}

	if plan.ElementsToClick == nil {
		plan.ElementsToClick = []entity.ActionItem{}
	}
	if plan.FormElements == nil {
		plan.FormElements = []entity.FormFieldItem{}
	}
	return &plan, nil
}

// firstObject returns the first {...} region whose braces balance, skipping
// braces inside JSON strings.
func firstObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end, ok := matchBrace(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
