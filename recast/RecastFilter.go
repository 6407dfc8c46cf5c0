package recast

// FilterLowHangingWalkableObstacles lets a non walkable span become walkable when it sits within
// walkableClimb above a walkable span (curbs, stair steps).
func FilterLowHangingWalkableObstacles(walkableClimb int, solid *Heightfield) {
	for _, s := range solid.spans {
		// Only the span directly above a walkable one can inherit, so the flag never climbs a stack.
		var below *Span
		belowWalkable := false
		for ; s != nil; below, s = s, s.next {
			walkable := s.area != RC_NULL_AREA
			if !walkable && belowWalkable && abs_i(s.smax-below.smax) <= walkableClimb {
				s.area = below.area
			}
			belowWalkable = walkable
		}
	}
}

// FilterLedgeSpans clears spans whose drop to a neighbour column exceeds walkableClimb, and spans whose
// reachable neighbours differ in height by more than walkableClimb.
func FilterLedgeSpans(walkableHeight int, walkableClimb int, solid *Heightfield) {
	w, h := solid.width, solid.height
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			for s := solid.spans[x+z*w]; s != nil; s = s.next {
				if s.area == RC_NULL_AREA {
					continue
				}
				if isLedge(solid, x, z, s, walkableHeight, walkableClimb) {
					s.area = RC_NULL_AREA
				}
			}
		}
	}
}

func isLedge(solid *Heightfield, x, z int, s *Span, walkableHeight, walkableClimb int) bool {
	bot, top := s.smax, s.ceiling()
	drop := MAX_HEIGHT
	lo, hi := s.smax, s.smax
	// fits reports whether an agent can pass between the gap above s and the gap [nbot, ntop).
	fits := func(nbot, ntop int) bool {
		return min(top, ntop)-max(bot, nbot) > walkableHeight
	}
	for dir := 0; dir < 4; dir++ {
		nx, nz := x+GetDirOffsetX(dir), z+GetDirOffsetY(dir)
		if nx < 0 || nz < 0 || nx >= solid.width || nz >= solid.height {
			drop = min(drop, -walkableClimb-bot)
			continue
		}
		// The gap below the first span reaches down to minus infinity.
		first := solid.spans[nx+nz*solid.width]
		ntop := MAX_HEIGHT
		if first != nil {
			ntop = first.smin
		}
		if fits(-walkableClimb, ntop) {
			drop = min(drop, -walkableClimb-bot)
		}
		for ns := first; ns != nil; ns = ns.next {
			nbot := ns.smax
			if !fits(nbot, ns.ceiling()) {
				continue
			}
			drop = min(drop, nbot-bot)
			if abs_i(nbot-bot) <= walkableClimb {
				lo = min(lo, nbot)
				hi = max(hi, nbot)
			}
		}
	}
	return drop < -walkableClimb || hi-lo > walkableClimb
}

// FilterWalkableLowHeightSpans removes the walkable flag from spans without walkableHeight of
// free space above them.
func FilterWalkableLowHeightSpans(walkableHeight int, solid *Heightfield) {
	for _, s := range solid.spans {
		for ; s != nil; s = s.next {
			if s.ceiling()-s.smax <= walkableHeight {
				s.area = RC_NULL_AREA
			}
		}
	}
}
