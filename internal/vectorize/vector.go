package vectorize

import "math"

// Vector is a sparse term-weight vector over a model's vocabulary.
// Indices are strictly increasing column numbers; Values holds the weight for
// the column at the same position.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether the vector has no non-zero entries.
func (v Vector) IsZero() bool {
	for _, val := range v.Values {
		if val != 0 {
			return false
		}
	}
	return true
}

// Norm returns the L2 magnitude.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// normalize scales v in place to unit length. Zero vectors are left as is.
func (v Vector) normalize() {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	for i := range v.Values {
		v.Values[i] /= norm
	}
}

// Dot returns the dot product of two sparse vectors.
func Dot(a, b Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of a and b. If either vector has zero
// magnitude the similarity is 0. Weights are non-negative, so the result is
// clamped to [0, 1] to absorb floating point drift.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	sim := Dot(a, b) / (na * nb)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
