package prompts

import (
	"bytes"
	"text/template"
)

type AnalysisPromptData struct {
	Instruction string
	Markup      string
	MarkupLimit int
}

func GenerateAnalysisPrompt(baseTemplate string, data AnalysisPromptData) (string, error) {
	tmpl, err := template.New("auth_analysis").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
