package scoring

import (
	"fmt"
	"math"
)

// cosine returns the cosine similarity of two vectors of equal length.
func cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimensions %d and %d", ErrBadEmbeddings, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("%w: zero vector", ErrBadEmbeddings)
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// meanSimilarity averages the similarity of vecs[0] to every other vector.
func meanSimilarity(vecs [][]float32) (float64, error) {
	if len(vecs) < 2 {
		return 0, fmt.Errorf("%w: need at least two vectors, got %d", ErrBadEmbeddings, len(vecs))
	}
	var sum float64
	for _, v := range vecs[1:] {
		s, err := cosine(vecs[0], v)
		if err != nil {
			return 0, err
		}
		sum += s
	}
	return sum / float64(len(vecs)-1), nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
