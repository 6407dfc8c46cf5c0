package recast

var (
	dirOffsetX = [4]int{-1, 0, 1, 0}
	dirOffsetY = [4]int{0, 1, 0, -1}
)

func clamp_i(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
func abs_i(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
func abs_f(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
func GetDirOffsetX(dir int) int {
	return dirOffsetX[dir&0x03]
}
func GetDirOffsetY(dir int) int {
	return dirOffsetY[dir&0x03]
}
func SetCon(s *CompactSpan, dir int, i int) {
	shift := uint(dir * 6)
	con := s.con
	s.con = (con & ^(0x3f << shift)) | ((i & 0x3f) << shift)
}
func GetCon(s *CompactSpan, dir int) int {
	shift := uint(dir * 6)
	return (s.con >> shift) & 0x3f
}
func rcGetDirForOffset(x int, y int) int {
	dirs := []int{3, 0, -1, 2, 1}
	return dirs[((y+1)<<1)+x]
}

// AreaToPolyFlags maps an area id to the traversal flags stored on the polygon.
func AreaToPolyFlags(area int) int {
	switch area {
	case RC_WALKABLE_AREA, POLYAREA_GROUND:
		return POLYFLAGS_WALK
	case POLYAREA_WATER:
		return POLYFLAGS_SWIM
	case POLYAREA_DOOR:
		return POLYFLAGS_WALK | POLYFLAGS_DOOR
	}
	return 0
}
