package detour

// Node is the A* state of one (polygon, entry side) pair.
type Node struct {
	index int
	/** Point on the portal the polygon was entered through. */
	pos   []float32
	cost  float32
	/** cost plus the heuristic to the goal. */
	total float32
	/** Parent node index, 0 for none. */
	pidx  int
	state int
	/** DT_NODE_OPEN and DT_NODE_CLOSED. */
	flags int
	id    int64
	/** Position in the open list heap, -1 when not queued. */
	heapIndex int
}

func (this *Node) Init(index int) {
	this.index = index
	this.pos = make([]float32, 3)
	this.heapIndex = -1
}
