package manager

import "context"

// InferenceAdapter abstracts the model runtime used by the Manager.
// Concrete implementations (e.g., llama.cpp) should satisfy this interface.
type InferenceAdapter interface {
	// Start loads the model at modelPath and prepares a reusable session.
	Start(modelPath string, params InferParams) (InferSession, error)
}

// InferSession represents an initialized inference context. A session is
// reused across analyses and must be closed when torn down.
type InferSession interface {
	// Analyze runs the model over one captured frame. The onToken callback
	// is invoked for each partial output token. Implementations must return
	// when the context is canceled.
	Analyze(ctx context.Context, imagePath, prompt string, onToken func(string) error) (FinalResult, error)
	// Close releases any resources associated with the session.
	Close() error
}

// InferParams captures generation parameters passed to the adapter.
type InferParams struct {
	Temperature   float32
	TopP          float32
	TopK          int
	MaxTokens     int
	Stop          []string
	Seed          int
	RepeatPenalty float32
}

// FinalResult summarizes the generation after streaming.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
