package intent

import "errors"

var (
	// ErrInvalidInput is returned when a request carries no usable text
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelUnavailable is returned when inference runs before any model was loaded or trained
	ErrModelUnavailable = errors.New("model not loaded")

	// ErrInsufficientTrainingData is returned when the corpus cannot support a classifier
	ErrInsufficientTrainingData = errors.New("training data insufficient")

	ErrUnknownIntent = errors.New("unknown intent label")
)
