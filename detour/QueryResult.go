package detour

// FindNearestPolyResult is the outcome of FindNearestPoly. A zero ref means no polygon was in range.
type FindNearestPolyResult struct {
	nearestRef int64
	nearestPos []float32
}

func (this *FindNearestPolyResult) GetNearestRef() int64 {
	return this.nearestRef
}

// GetNearestPos returns the point on the nearest polygon closest to the query center, nil without a polygon.
func (this *FindNearestPolyResult) GetNearestPos() []float32 {
	return this.nearestPos
}

type closestPointResult struct {
	/** The query point projects inside the polygon. */
	overPoly bool
	point    []float32
}
