package prompts

import (
	_ "embed"
)

// SystemInstruction is sent as the system turn to every analyzer.
const SystemInstruction = "You are an AI assistant helping with browser automation. You only answer with JSON."

//go:embed auth_analysis.txt
var AuthAnalysisPrompt string
