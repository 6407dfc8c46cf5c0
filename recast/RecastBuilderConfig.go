package recast

// RecastBuilderConfig is the field geometry of one build: the tile box grown by the border when tiled, or
// the whole input box otherwise.
type RecastBuilderConfig struct {
	cfg *RecastConfig
	/** Field size in cells, border included. */
	width  int
	height int
	bmin   []float32
	bmax   []float32
	/** Cells of padding on each side, rasterized but never meshed. */
	borderSize int
	tiled      bool
	tx         int
	tz         int
}

func (this *RecastBuilderConfig) Init(cfg *RecastConfig, bmin []float32, bmax []float32, tx int, tz int, tiled bool) {
	this.cfg = cfg
	this.tiled = tiled
	this.bmin = append([]float32{}, bmin[:3]...)
	this.bmax = append([]float32{}, bmax[:3]...)
	this.tx = tx
	this.tz = tz
	if tiled {
		tsx := float32(cfg.TileSizeX) * cfg.Cs
		tsz := float32(cfg.TileSizeZ) * cfg.Cs
		this.bmin[0] += float32(tx) * tsx
		this.bmin[2] += float32(tz) * tsz
		this.bmax[0] = this.bmin[0] + tsx
		this.bmax[2] = this.bmin[2] + tsz

		// Neighbouring tiles rasterize the same border cells so their edges line up and obstacles near the
		// edge still erode the walkable area.
		this.borderSize = cfg.BorderSize()
		this.bmin[0] -= float32(this.borderSize) * cfg.Cs
		this.bmin[2] -= float32(this.borderSize) * cfg.Cs
		this.bmax[0] += float32(this.borderSize) * cfg.Cs
		this.bmax[2] += float32(this.borderSize) * cfg.Cs
		this.width = cfg.TileSizeX + this.borderSize*2
		this.height = cfg.TileSizeZ + this.borderSize*2
	} else {
		this.width, this.height = CalcGridSize(this.bmin, this.bmax, cfg.Cs)
		this.borderSize = 0
	}
}

func (this *RecastBuilderConfig) GetWidth() int {
	return this.width
}

func (this *RecastBuilderConfig) GetHeight() int {
	return this.height
}

func (this *RecastBuilderConfig) GetBmin() []float32 {
	return this.bmin
}
func (this *RecastBuilderConfig) GetBmax() []float32 {
	return this.bmax
}
func (this *RecastBuilderConfig) GetBorderSize() int {
	return this.borderSize
}
func (this *RecastBuilderConfig) GetTileX() int {
	return this.tx
}
func (this *RecastBuilderConfig) GetTileZ() int {
	return this.tz
}
