package llm

import "context"

// Completer is the language-model collaborator. Two independent completions
// happen per pipeline run: one to normalize the user's request and one to
// generate SQL with the schema primer as system context.
type Completer interface {
	Complete(ctx context.Context, systemMsg, userMsg string) (string, error)
}
