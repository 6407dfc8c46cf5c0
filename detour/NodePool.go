package detour

type nodeKey struct {
	ref   int64
	state int
}

// NodePool hands out one search node per (polygon ref, state). Node indices start at 1 so that 0 can
// mean "no parent".
type NodePool struct {
	byKey map[nodeKey]*Node
	nodes []*Node
}

func (this *NodePool) getNode(ref int64) *Node {
	return this.getNode2(ref, 0)
}

func (this *NodePool) getNode2(ref int64, state int) *Node {
	key := nodeKey{ref, state}
	if node, ok := this.byKey[key]; ok {
		return node
	}
	node := &Node{}
	node.Init(len(this.nodes) + 1)
	node.id = ref
	node.state = state
	this.nodes = append(this.nodes, node)
	this.byKey[key] = node
	return node
}

func (this *NodePool) getNodeIdx(node *Node) int {
	if node == nil {
		return 0
	}
	return node.index
}

func (this *NodePool) getNodeAtIdx(idx int) *Node {
	if idx <= 0 || idx > len(this.nodes) {
		return nil
	}
	return this.nodes[idx-1]
}

func (this *NodePool) clear() {
	clear(this.byKey)
	this.nodes = this.nodes[:0]
}
