package app

import "errors"

var (
	// ErrGenerationFailed matches every GenerationError.
	ErrGenerationFailed = errors.New("ai generation failed")
	// ErrGenerationTimeout matches only generations that ran out of time.
	ErrGenerationTimeout = errors.New("ai generation timed out")
)

// FailureKind classifies why a generation failed.
type FailureKind string

const (
	KindInvalidMode FailureKind = "invalid_mode"
	KindProvider    FailureKind = "provider"
	KindTimeout     FailureKind = "timeout"
)

// GenerationError is the only error Generate returns. Its message is fixed
// and safe to show to users; the provider-specific cause is reachable through
// Unwrap for logging.
type GenerationError struct {
	Kind  FailureKind
	cause error
}

func (e *GenerationError) Error() string {
	if e.Kind == KindTimeout {
		return ErrGenerationTimeout.Error()
	}
	return ErrGenerationFailed.Error()
}

func (e *GenerationError) Unwrap() error { return e.cause }

func (e *GenerationError) Is(target error) bool {
	switch target {
	case ErrGenerationFailed:
		return true
	case ErrGenerationTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

func fail(kind FailureKind, cause error) error {
	return &GenerationError{Kind: kind, cause: cause}
}
