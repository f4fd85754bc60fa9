package contextmgr

import (
	"fmt"

	"augur/internal/llm"
)

// Augmented is the fully rendered downstream prompt plus the optional tool
// activation. A nil Tools field means no tool request, which downstream
// consumers treat differently from an explicit opt-out.
type Augmented struct {
	FinalPrompt string
	Tools       *llm.ToolDescriptor
	Topics      []string
}

const promptTemplate = `You are a senior operations copilot. Analyze the reference context below against the user's question and answer from that context first, falling back to general knowledge only where the context is silent.

Reference context:
%s

User question:
%s

Respond with a short summary followed by 2-3 bulleted, actionable recommendations.`

func renderPrompt(contextText, query string) string {
	return fmt.Sprintf(promptTemplate, contextText, query)
}
