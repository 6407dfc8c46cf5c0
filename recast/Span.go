package recast

// Span is a solid run of cells [smin, smax) in one heightfield column.
type Span struct {
	smin int
	smax int
	area int
	/** Next span up the column. */
	next *Span
}

func (this *Span) GetSmin() int {
	return this.smin
}
func (this *Span) GetSmax() int {
	return this.smax
}
func (this *Span) GetArea() int {
	return this.area
}
func (this *Span) GetNext() *Span {
	return this.next
}

// ceiling is the bottom of the next span up the column, MAX_HEIGHT for the top span.
func (this *Span) ceiling() int {
	if this.next == nil {
		return MAX_HEIGHT
	}
	return this.next.smin
}
