package recast

// CompactSpan is the open space above a solid span: floor y and clearance h in cells. con packs one
// 6 bit neighbour layer index per direction.
type CompactSpan struct {
	y   int
	reg int
	con int
	h   int
}

// CompactCell addresses the spans of one column inside CompactHeightfield spans.
type CompactCell struct {
	index int
	count int
}
