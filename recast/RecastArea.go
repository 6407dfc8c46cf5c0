package recast

// ErodeWalkableArea clears walkable spans closer than radius cells to an unwalkable span or to the edge of
// the walkable surface.
func ErodeWalkableArea(radius int, chf *CompactHeightfield) {
	dist := make([]int, chf.spanCount)
	chf.eachSpan(func(x, z, i int) {
		dist[i] = 255
		if chf.areas[i] == RC_NULL_AREA {
			dist[i] = 0
			return
		}
		for dir := 0; dir < 4; dir++ {
			if _, _, ni, ok := chf.neighbour(x, z, i, dir); !ok || chf.areas[ni] == RC_NULL_AREA {
				dist[i] = 0
				return
			}
		}
	})
	chamferSweep(chf, dist)
	thr := radius * 2
	for i, d := range dist {
		if d < thr {
			chf.areas[i] = RC_NULL_AREA
		}
	}
}
