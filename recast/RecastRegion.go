package recast

import "github.com/golang/glog"

// BuildDistanceField computes, for every span, the chamfer distance to the nearest area border
// and blurs it. BuildRegions reads the result.
func BuildDistanceField(chf *CompactHeightfield) {
	dist := make([]int, chf.spanCount)
	chf.maxDistance = calculateDistanceField(chf, dist)
	chf.dist = boxBlur(chf, 1, dist)
}

// chamferSteps lists, per sweep, a straight step and the diagonal reached by turning from it.
var chamferSteps = [2][2][2]int{
	{{0, 3}, {3, 2}},
	{{2, 1}, {1, 0}},
}

func calculateDistanceField(chf *CompactHeightfield, dist []int) int {
	for i := range dist {
		dist[i] = 0xffff
	}
	// Seed zero on every span that does not have four same-area neighbours.
	chf.eachSpan(func(x, z, i int) {
		same := 0
		for dir := 0; dir < 4; dir++ {
			if _, _, ni, ok := chf.neighbour(x, z, i, dir); ok && chf.areas[ni] == chf.areas[i] {
				same++
			}
		}
		if same != 4 {
			dist[i] = 0
		}
	})
	chamferSweep(chf, dist)
	maxDist := 0
	for _, d := range dist {
		maxDist = max(maxDist, d)
	}
	return maxDist
}

// chamferSweep propagates dist with a forward and a backward 3-4 chamfer pass. Straight steps cost 2 and
// diagonal steps 3, distances never grow past their seeded value.
func chamferSweep(chf *CompactHeightfield, dist []int) {
	relax := func(x, z, i int, steps [2][2]int) {
		for _, step := range steps {
			ax, az, ai, ok := chf.neighbour(x, z, i, step[0])
			if !ok {
				continue
			}
			dist[i] = min(dist[i], dist[ai]+2)
			if _, _, di, ok := chf.neighbour(ax, az, ai, step[1]); ok {
				dist[i] = min(dist[i], dist[di]+3)
			}
		}
	}
	chf.eachSpan(func(x, z, i int) { relax(x, z, i, chamferSteps[0]) })
	w, h := chf.width, chf.height
	for z := h - 1; z >= 0; z-- {
		for x := w - 1; x >= 0; x-- {
			c := &chf.cells[x+z*w]
			for i := c.index; i < c.index+c.count; i++ {
				relax(x, z, i, chamferSteps[1])
			}
		}
	}
}

// boxBlur averages every distance above 2*thr with its 8 neighbours. A missing neighbour
// counts as the centre value.
func boxBlur(chf *CompactHeightfield, thr int, src []int) []int {
	dst := make([]int, chf.spanCount)
	thr *= 2
	chf.eachSpan(func(x, z, i int) {
		cd := src[i]
		if cd <= thr {
			dst[i] = cd
			return
		}
		sum := cd
		for dir := 0; dir < 4; dir++ {
			ax, az, ai, ok := chf.neighbour(x, z, i, dir)
			if !ok {
				sum += cd * 2
				continue
			}
			sum += src[ai]
			if _, _, di, ok := chf.neighbour(ax, az, ai, (dir+1)&0x3); ok {
				sum += src[di]
			} else {
				sum += cd
			}
		}
		dst[i] = (sum + 5) / 9
	})
	return dst
}

// eachSpan visits every span in cell order.
func (this *CompactHeightfield) eachSpan(fn func(x, z, i int)) {
	for z := 0; z < this.height; z++ {
		for x := 0; x < this.width; x++ {
			c := &this.cells[x+z*this.width]
			for i := c.index; i < c.index+c.count; i++ {
				fn(x, z, i)
			}
		}
	}
}

// watershed holds the double buffered region and distance arrays that expansion swaps between.
type watershed struct {
	chf     *CompactHeightfield
	reg     []int
	dist    []int
	nextReg []int
	nextDst []int
}

func newWatershed(chf *CompactHeightfield) *watershed {
	n := chf.spanCount
	return &watershed{
		chf:     chf,
		reg:     make([]int, n),
		dist:    make([]int, n),
		nextReg: make([]int, n),
		nextDst: make([]int, n),
	}
}

// BuildRegions partitions the walkable spans into watershed regions. Spans inside the borderSize
// frame are painted with RC_BORDER_REG ids, regions below minRegionArea that do not touch the
// border are removed and regions below mergeRegionArea are merged into a neighbour.
func BuildRegions(chf *CompactHeightfield, borderSize int, minRegionArea int, mergeRegionArea int) {
	ws := newWatershed(chf)
	w, h := chf.width, chf.height
	nextId := 1
	if borderSize > 0 {
		bw := min(w, borderSize)
		bh := min(h, borderSize)
		frame := [4][4]int{
			{0, bw, 0, h},
			{w - bw, w, 0, h},
			{0, w, 0, bh},
			{0, w, h - bh, h},
		}
		for _, r := range frame {
			ws.paintRect(r[0], r[1], r[2], r[3], nextId|RC_BORDER_REG)
			nextId++
		}
		chf.borderSize = borderSize
	}

	// How far a level may overflow into lower ground before new seeds are flooded.
	const expandIters = 8
	stacks := make([][]int, NB_STACKS)
	var flood []int
	level := (chf.maxDistance + 1) &^ 1
	sId := -1
	for level > 0 {
		level = max(level-2, 0)
		sId = (sId + 1) & (NB_STACKS - 1)
		if sId == 0 {
			ws.sortByLevel(level, stacks, 1)
		} else {
			stacks[sId] = ws.carryOver(stacks[sId-1], stacks[sId])
		}
		ws.expand(expandIters, level, stacks[sId])
		for j := 0; j < len(stacks[sId]); j += 3 {
			x, z, i := stacks[sId][j], stacks[sId][j+1], stacks[sId][j+2]
			if i < 0 || ws.reg[i] != 0 {
				continue
			}
			if ws.flood(x, z, i, level, nextId, &flood) {
				nextId++
			}
		}
	}
	ws.expand(expandIters*8, 0, ws.unassigned(0))

	maxRegions, overlaps := mergeAndFilterRegions(minRegionArea, mergeRegionArea, nextId, chf, ws.reg)
	chf.maxRegions = maxRegions
	if len(overlaps) > 0 {
		glog.V(1).Infof("BuildRegions: %d overlapping regions", len(overlaps))
	}
	for i := 0; i < chf.spanCount; i++ {
		chf.spans[i].reg = ws.reg[i]
	}
}

func (this *watershed) paintRect(minx, maxx, minz, maxz int, id int) {
	chf := this.chf
	for z := minz; z < maxz; z++ {
		for x := minx; x < maxx; x++ {
			c := &chf.cells[x+z*chf.width]
			for i := c.index; i < c.index+c.count; i++ {
				if chf.areas[i] != RC_NULL_AREA {
					this.reg[i] = id
				}
			}
		}
	}
}

// sortByLevel buckets the unassigned spans into stacks. Each stack covers 1<<logLevels
// distance levels counted down from startLevel; deeper spans go to the first stack.
func (this *watershed) sortByLevel(startLevel int, stacks [][]int, logLevels uint) {
	startLevel >>= logLevels
	for j := range stacks {
		stacks[j] = stacks[j][:0]
	}
	chf := this.chf
	chf.eachSpan(func(x, z, i int) {
		if chf.areas[i] == RC_NULL_AREA || this.reg[i] != 0 {
			return
		}
		sId := max(startLevel-(chf.dist[i]>>logLevels), 0)
		if sId >= len(stacks) {
			return
		}
		stacks[sId] = append(stacks[sId], x, z, i)
	})
}

// carryOver appends the entries of src that still have no region to dst.
func (this *watershed) carryOver(src, dst []int) []int {
	for j := 0; j < len(src); j += 3 {
		if i := src[j+2]; i >= 0 && this.reg[i] == 0 {
			dst = append(dst, src[j], src[j+1], i)
		}
	}
	return dst
}

// unassigned lists every walkable span at or above level that has no region yet.
func (this *watershed) unassigned(level int) []int {
	var out []int
	chf := this.chf
	chf.eachSpan(func(x, z, i int) {
		if chf.dist[i] >= level && this.reg[i] == 0 && chf.areas[i] != RC_NULL_AREA {
			out = append(out, x, z, i)
		}
	})
	return out
}

// expand grows the existing non border regions into the spans listed in stack, one ring per
// iteration. Consumed entries get their span index replaced with -1.
func (this *watershed) expand(maxIter int, level int, stack []int) {
	chf := this.chf
	for j := 0; j < len(stack); j += 3 {
		if i := stack[j+2]; i >= 0 && this.reg[i] != 0 {
			stack[j+2] = -1
		}
	}
	for iter := 0; len(stack) > 0; {
		failed := 0
		copy(this.nextReg, this.reg)
		copy(this.nextDst, this.dist)
		for j := 0; j < len(stack); j += 3 {
			x, z, i := stack[j], stack[j+1], stack[j+2]
			if i < 0 {
				failed++
				continue
			}
			r := this.reg[i]
			best := 0xffff
			for dir := 0; dir < 4; dir++ {
				_, _, ai, ok := chf.neighbour(x, z, i, dir)
				if !ok || chf.areas[ai] != chf.areas[i] {
					continue
				}
				nr := this.reg[ai]
				if nr > 0 && nr&RC_BORDER_REG == 0 && this.dist[ai]+2 < best {
					r = nr
					best = this.dist[ai] + 2
				}
			}
			if r == 0 {
				failed++
				continue
			}
			stack[j+2] = -1
			this.nextReg[i] = r
			this.nextDst[i] = best
		}
		this.reg, this.nextReg = this.nextReg, this.reg
		this.dist, this.nextDst = this.nextDst, this.dist
		if failed*3 == len(stack) {
			return
		}
		if level > 0 {
			iter++
			if iter >= maxIter {
				return
			}
		}
	}
}

// flood paints region r outward from span i over spans at least two levels below level.
// A span that touches another region, directly or across a diagonal, is left unpainted.
// Reports whether any span kept the new id.
func (this *watershed) flood(x, z, i int, level int, r int, stack *[]int) bool {
	chf := this.chf
	area := chf.areas[i]
	lev := max(level-2, 0)
	*stack = append((*stack)[:0], x, z, i)
	this.reg[i] = r
	this.dist[i] = 0
	painted := 0
	for len(*stack) > 0 {
		n := len(*stack)
		cx, cz, ci := (*stack)[n-3], (*stack)[n-2], (*stack)[n-1]
		*stack = (*stack)[:n-3]
		if this.touchesOther(cx, cz, ci, area, r) {
			this.reg[ci] = 0
			continue
		}
		painted++
		for dir := 0; dir < 4; dir++ {
			ax, az, ai, ok := chf.neighbour(cx, cz, ci, dir)
			if !ok || chf.areas[ai] != area {
				continue
			}
			if chf.dist[ai] >= lev && this.reg[ai] == 0 {
				this.reg[ai] = r
				this.dist[ai] = 0
				*stack = append(*stack, ax, az, ai)
			}
		}
	}
	return painted > 0
}

func (this *watershed) touchesOther(x, z, i int, area int, r int) bool {
	chf := this.chf
	for dir := 0; dir < 4; dir++ {
		ax, az, ai, ok := chf.neighbour(x, z, i, dir)
		if !ok || chf.areas[ai] != area {
			continue
		}
		nr := this.reg[ai]
		if nr&RC_BORDER_REG != 0 {
			continue
		}
		if nr != 0 && nr != r {
			return true
		}
		_, _, di, ok := chf.neighbour(ax, az, ai, (dir+1)&0x3)
		if !ok || chf.areas[di] != area {
			continue
		}
		if dr := this.reg[di]; dr != 0 && dr != r {
			return true
		}
	}
	return false
}

// Region gathers what merging needs to know about one watershed region.
type Region struct {
	spanCount int
	id        int
	areaType  int
	remap     bool
	visited   bool
	/** The region lies on top of itself in some column. */
	overlap bool
	/** Neighbour region ids in contour order, 0 for a border gap. */
	connections []int
	/** Regions stacked above or below in the same columns. */
	floors []int
}

func (this *Region) removable() bool {
	return this.id == 0 || this.id&RC_BORDER_REG != 0
}

// mergeAndFilterRegions removes islands smaller than minRegionArea, folds regions of at most
// mergeRegionSize spans into their smallest compatible neighbour and compacts the ids.
// It returns the highest id in use and the ids of regions that overlap themselves.
func mergeAndFilterRegions(minRegionArea int, mergeRegionSize int, maxRegionId int, chf *CompactHeightfield, srcReg []int) (int, []int) {
	nreg := maxRegionId + 1
	regions := make([]*Region, nreg)
	for i := range regions {
		regions[i] = &Region{id: i}
	}
	gatherRegionInfo(chf, srcReg, regions)
	removeSmallIslands(regions, minRegionArea)
	for mergeSmallRegions(regions, mergeRegionSize) > 0 {
	}

	// Compact the surviving ids to 1..n in first appearance order.
	for _, reg := range regions {
		reg.remap = !reg.removable()
	}
	nextId := 0
	for i, reg := range regions {
		if !reg.remap {
			continue
		}
		oldId := reg.id
		nextId++
		for _, other := range regions[i:] {
			if other.id == oldId {
				other.id = nextId
				other.remap = false
			}
		}
	}
	for i := range srcReg {
		if srcReg[i]&RC_BORDER_REG == 0 {
			srcReg[i] = regions[srcReg[i]].id
		}
	}
	var overlaps []int
	for _, reg := range regions {
		if reg.overlap {
			overlaps = append(overlaps, reg.id)
		}
	}
	return nextId, overlaps
}

// gatherRegionInfo counts spans per region, records stacked regions and walks the outline
// of each region once to collect its neighbours.
func gatherRegionInfo(chf *CompactHeightfield, srcReg []int, regions []*Region) {
	nreg := len(regions)
	chf.eachSpan(func(x, z, i int) {
		r := srcReg[i]
		if r == 0 || r >= nreg {
			return
		}
		reg := regions[r]
		reg.spanCount++
		c := &chf.cells[x+z*chf.width]
		for j := c.index; j < c.index+c.count; j++ {
			if j == i {
				continue
			}
			floor := srcReg[j]
			if floor == 0 || floor >= nreg {
				continue
			}
			if floor == r {
				reg.overlap = true
			}
			reg.floors = appendUnique(reg.floors, floor)
		}
		if len(reg.connections) > 0 {
			return
		}
		reg.areaType = chf.areas[i]
		for dir := 0; dir < 4; dir++ {
			if isSolidEdge(chf, srcReg, x, z, i, dir) {
				reg.connections = regionConnections(x, z, i, dir, chf, srcReg)
				break
			}
		}
	})
}

// removeSmallIslands clears every group of connected regions whose total span count is
// below minArea. Groups touching a tile border are kept since their real size is unknown.
func removeSmallIslands(regions []*Region, minArea int) {
	var stack, trace []int
	for i, reg := range regions {
		if reg.removable() || reg.spanCount == 0 || reg.visited {
			continue
		}
		touchesBorder := false
		total := 0
		stack = append(stack[:0], i)
		trace = trace[:0]
		reg.visited = true
		for len(stack) > 0 {
			cur := regions[stack[len(stack)-1]]
			stack = stack[:len(stack)-1]
			total += cur.spanCount
			trace = append(trace, cur.id)
			for _, nid := range cur.connections {
				if nid&RC_BORDER_REG != 0 {
					touchesBorder = true
					continue
				}
				nei := regions[nid]
				if nei.visited || nei.removable() {
					continue
				}
				nei.visited = true
				stack = append(stack, nei.id)
			}
		}
		if total < minArea && !touchesBorder {
			for _, ri := range trace {
				regions[ri].spanCount = 0
				regions[ri].id = 0
			}
		}
	}
}

// mergeSmallRegions runs one merge sweep and reports how many merges happened.
func mergeSmallRegions(regions []*Region, mergeSize int) int {
	merged := 0
	for _, reg := range regions {
		if reg.removable() || reg.overlap || reg.spanCount == 0 {
			continue
		}
		if reg.spanCount > mergeSize && isRegionConnectedToBorder(reg) {
			continue
		}
		smallest := 0xfffffff
		target := reg.id
		for _, nid := range reg.connections {
			if nid&RC_BORDER_REG != 0 {
				continue
			}
			nei := regions[nid]
			if nei.removable() || nei.overlap {
				continue
			}
			if nei.spanCount < smallest && canMergeWithRegion(reg, nei) && canMergeWithRegion(nei, reg) {
				smallest = nei.spanCount
				target = nei.id
			}
		}
		if target == reg.id {
			continue
		}
		oldId := reg.id
		if !mergeRegions(regions[target], reg) {
			continue
		}
		for _, other := range regions {
			if other.removable() {
				continue
			}
			if other.id == oldId {
				other.id = target
			}
			replaceNeighbour(other, oldId, target)
		}
		merged++
	}
	return merged
}

func appendUnique(ids []int, n int) []int {
	for _, id := range ids {
		if id == n {
			return ids
		}
	}
	return append(ids, n)
}

func regionAcross(chf *CompactHeightfield, srcReg []int, x, z, i, dir int) int {
	if _, _, ai, ok := chf.neighbour(x, z, i, dir); ok {
		return srcReg[ai]
	}
	return 0
}

func isSolidEdge(chf *CompactHeightfield, srcReg []int, x int, z int, i int, dir int) bool {
	return regionAcross(chf, srcReg, x, z, i, dir) != srcReg[i]
}

// regionConnections follows the outline of the region owning span i, starting at its solid
// edge dir, and returns the neighbouring region ids in order with repeats collapsed.
func regionConnections(x, z, i, dir int, chf *CompactHeightfield, srcReg []int) []int {
	startDir, startSpan := dir, i
	cur := regionAcross(chf, srcReg, x, z, i, dir)
	cont := []int{cur}
	for iter := 1; iter < maxContourWalk; iter++ {
		if isSolidEdge(chf, srcReg, x, z, i, dir) {
			if r := regionAcross(chf, srcReg, x, z, i, dir); r != cur {
				cur = r
				cont = append(cont, cur)
			}
			dir = (dir + 1) & 0x3
		} else {
			nx, nz, ni, ok := chf.neighbour(x, z, i, dir)
			if !ok {
				return cont
			}
			x, z, i = nx, nz, ni
			dir = (dir + 3) & 0x3
		}
		if i == startSpan && dir == startDir {
			break
		}
	}
	return removeAdjacentDuplicates(cont)
}

// isRegionConnectedToBorder reports whether the outline has a gap with no region behind it.
func isRegionConnectedToBorder(reg *Region) bool {
	for _, c := range reg.connections {
		if c == 0 {
			return true
		}
	}
	return false
}

// canMergeWithRegion rejects pairs of different area type, pairs sharing more than one edge
// and pairs that are stacked over each other.
func canMergeWithRegion(a, b *Region) bool {
	if a.areaType != b.areaType {
		return false
	}
	shared := 0
	for _, c := range a.connections {
		if c == b.id {
			shared++
		}
	}
	if shared > 1 {
		return false
	}
	for _, f := range a.floors {
		if f == b.id {
			return false
		}
	}
	return true
}

// mergeRegions splices b's outline into a's at their shared edge and moves b's spans to a.
func mergeRegions(a, b *Region) bool {
	insA := indexOf(a.connections, b.id)
	insB := indexOf(b.connections, a.id)
	if insA < 0 || insB < 0 {
		return false
	}
	acon, bcon := a.connections, b.connections
	joined := make([]int, 0, len(acon)+len(bcon)-2)
	for k := 1; k < len(acon); k++ {
		joined = append(joined, acon[(insA+k)%len(acon)])
	}
	for k := 1; k < len(bcon); k++ {
		joined = append(joined, bcon[(insB+k)%len(bcon)])
	}
	a.connections = removeAdjacentDuplicates(joined)
	for _, f := range b.floors {
		a.floors = appendUnique(a.floors, f)
	}
	a.spanCount += b.spanCount
	b.spanCount = 0
	b.connections = nil
	return true
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// removeAdjacentDuplicates collapses runs of equal ids in a cyclic list, keeping at least one.
func removeAdjacentDuplicates(ids []int) []int {
	for i := 0; i < len(ids) && len(ids) > 1; {
		if ids[i] == ids[(i+1)%len(ids)] {
			ids = append(ids[:i], ids[i+1:]...)
		} else {
			i++
		}
	}
	return ids
}

func replaceNeighbour(reg *Region, oldId int, newId int) {
	changed := false
	for i, c := range reg.connections {
		if c == oldId {
			reg.connections[i] = newId
			changed = true
		}
	}
	for i, f := range reg.floors {
		if f == oldId {
			reg.floors[i] = newId
		}
	}
	if changed {
		reg.connections = removeAdjacentDuplicates(reg.connections)
	}
}
