package models

// Cents is an exact monetary amount in integer cents. The engine never
// divides by 100; converting to a display currency happens only at the
// presentation boundary (see utils/money).
type Cents int64

// Certainty classifies how reliable a future income is.
type Certainty string

const (
	CertaintyGuaranteed Certainty = "guaranteed"
	CertaintyProbable   Certainty = "probable"
)

// Valid reports whether c is one of the two supported certainty tiers. The
// optimistic/pessimistic split assumes a strict binary; a third tier must
// not slip in silently.
func (c Certainty) Valid() bool {
	return c == CertaintyGuaranteed || c == CertaintyProbable
}
