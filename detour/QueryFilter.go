package detour

type QueryFilter struct {
	excludeFlags int
	includeFlags int
	areaCost     []float32
}

// NewQueryFilter accepts every polygon with any flag set, all areas cost 1.
func NewQueryFilter() *QueryFilter {
	filter := &QueryFilter{}
	filter.Init()
	return filter
}

func (this *QueryFilter) Init() {
	this.includeFlags = 0xffff
	this.excludeFlags = 0
	this.areaCost = make([]float32, DT_MAX_AREAS)
	for i := 0; i < DT_MAX_AREAS; i++ {
		this.areaCost[i] = 1.0
	}
}
func (this *QueryFilter) SetIncludeFlags(flags int) {
	this.includeFlags = flags
}
func (this *QueryFilter) SetExcludeFlags(flags int) {
	this.excludeFlags = flags
}
func (this *QueryFilter) SetAreaCost(area int, cost float32) {
	this.areaCost[area] = cost
}
func (this *QueryFilter) passFilter(ref int64, tile *MeshTile, poly *Poly) bool {
	return (poly.flags&this.includeFlags) != 0 && (poly.flags&this.excludeFlags) == 0
}
func (this *QueryFilter) getCost(pa []float32, pb []float32, curPoly *Poly) float32 {
	return vDist(pa, pb, 0) * this.areaCost[curPoly.getArea()]
}
