package scoring

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid scoring config")

	// ErrNoPredictions means the masked-LM returned an empty list.
	ErrNoPredictions = errors.New("no masked predictions")

	// ErrNoDistractors means the candidate has no option besides the answer.
	ErrNoDistractors = errors.New("no distractors to compare")

	// ErrBadEmbeddings covers a vector count or dimension mismatch and zero vectors.
	ErrBadEmbeddings = errors.New("malformed embeddings")
)
