package detour

import "container/heap"

// nodeHeap orders nodes by total cost for container/heap.
type nodeHeap []*Node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].total < h[j].total }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*Node)
	n.heapIndex = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.heapIndex = -1
	*h = old[:len(old)-1]
	return n
}

type NodeQueue struct {
	heap nodeHeap
}

func (this *NodeQueue) clear() {
	for _, n := range this.heap {
		n.heapIndex = -1
	}
	this.heap = this.heap[:0]
}
func (this *NodeQueue) pop() *Node {
	if len(this.heap) == 0 {
		return nil
	}
	return heap.Pop(&this.heap).(*Node)
}

// modify restores the heap order after node.total decreased.
func (this *NodeQueue) modify(node *Node) {
	if node.heapIndex < 0 {
		heap.Push(&this.heap, node)
		return
	}
	heap.Fix(&this.heap, node.heapIndex)
}
func (this *NodeQueue) push(node *Node) {
	heap.Push(&this.heap, node)
}
func (this *NodeQueue) isEmpty() bool {
	return len(this.heap) == 0
}
