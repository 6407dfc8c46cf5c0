package recast

// Heightfield is the solid voxel field: one linked list of spans per cell, sorted bottom up and never
// overlapping.
type Heightfield struct {
	width  int
	height int
	bmin   []float32
	bmax   []float32
	cs     float32
	ch     float32
	/** Column heads, width*height. */
	spans []*Span
	/** Padding cells on each side that belong to neighbouring tiles. */
	borderSize int
}

func NewHeightfield(width int, height int, bmin []float32, bmax []float32, cs float32, ch float32, borderSize int) *Heightfield {
	return &Heightfield{
		width:      width,
		height:     height,
		bmin:       append([]float32{}, bmin[:3]...),
		bmax:       append([]float32{}, bmax[:3]...),
		cs:         cs,
		ch:         ch,
		spans:      make([]*Span, width*height),
		borderSize: borderSize,
	}
}

// Clone copies the heightfield including every span column, the copy shares nothing with the source.
func (this *Heightfield) Clone() *Heightfield {
	hf := NewHeightfield(this.width, this.height, this.bmin, this.bmax, this.cs, this.ch, this.borderSize)
	for i, s := range this.spans {
		var prev *Span
		for ; s != nil; s = s.next {
			c := &Span{smin: s.smin, smax: s.smax, area: s.area}
			if prev == nil {
				hf.spans[i] = c
			} else {
				prev.next = c
			}
			prev = c
		}
	}
	return hf
}

// AddSpan merges [smin, smax) into column (x, z), see addSpan.
func (this *Heightfield) AddSpan(x, z, smin, smax, area, flagMergeThr int) {
	addSpan(this, x, z, smin, smax, area, flagMergeThr)
}

// PushSpan appends [smin, smax) on top of column (x, z) without merging. It refuses spans out of range, empty
// or overlapping the current column top.
func (this *Heightfield) PushSpan(x, z, smin, smax, area int) bool {
	if x < 0 || z < 0 || x >= this.width || z >= this.height || smin < 0 || smin >= smax || smax > RC_SPAN_MAX_HEIGHT {
		return false
	}
	s := &Span{smin: smin, smax: smax, area: area}
	idx := x + z*this.width
	top := this.spans[idx]
	if top == nil {
		this.spans[idx] = s
		return true
	}
	for top.next != nil {
		top = top.next
	}
	if top.smax > smin {
		return false
	}
	top.next = s
	return true
}

// GetSpan returns the lowest span of column (x, z), nil for an empty or out of range column.
func (this *Heightfield) GetSpan(x, z int) *Span {
	if x < 0 || z < 0 || x >= this.width || z >= this.height {
		return nil
	}
	return this.spans[x+z*this.width]
}

func (this *Heightfield) GetWidth() int {
	return this.width
}
func (this *Heightfield) GetHeight() int {
	return this.height
}
func (this *Heightfield) GetBmin() []float32 {
	return this.bmin
}
func (this *Heightfield) GetBmax() []float32 {
	return this.bmax
}
func (this *Heightfield) GetCs() float32 {
	return this.cs
}
func (this *Heightfield) GetCh() float32 {
	return this.ch
}
func (this *Heightfield) GetBorderSize() int {
	return this.borderSize
}

// SpanCount counts every span of the field, walkable or not.
func (this *Heightfield) SpanCount() int {
	n := 0
	for _, s := range this.spans {
		for ; s != nil; s = s.next {
			n++
		}
	}
	return n
}
