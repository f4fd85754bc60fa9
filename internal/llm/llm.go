package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm unavailable")

// ToolDescriptor asks the downstream model to activate a named tool for one
// completion. Absence of a descriptor is meaningful: it is not the same as
// explicitly disabling the tool.
type ToolDescriptor struct {
	Type string `json:"type"`
}

const ToolTypeLiveSearch = "live_search"

func LiveSearchTool() *ToolDescriptor {
	return &ToolDescriptor{Type: ToolTypeLiveSearch}
}

type CompletionInput struct {
	Prompt   string
	Tools    *ToolDescriptor
	Identity string
}

// Classifier maps a free-text query onto connector identifiers drawn from the
// allowed vocabulary. Implementations may fail; callers degrade failures to an
// empty result.
type Classifier interface {
	Classify(ctx context.Context, query string, allowed []string) ([]string, error)
}

type Completer interface {
	Complete(ctx context.Context, input CompletionInput) (string, error)
}
