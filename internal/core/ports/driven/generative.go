package driven

import "context"

// GenerativeService produces text completions from a prompt.
//
// Implementations wrap a remote generative model. Failures wrap
// domain.ErrGenerationFailed; they are never swallowed or masked as an
// empty answer.
type GenerativeService interface {
	// Generate produces a text completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generative model being used.
	ModelName() string
}
