package dynamic

// ColliderHandle names a registry slot. A handle goes stale once its collider is removed, even when the
// slot is reused.
type ColliderHandle struct {
	Index      uint32
	Generation uint32
}

// ID packs the handle into one integer, generation in the high half.
func (this ColliderHandle) ID() uint64 {
	return uint64(this.Generation)<<32 | uint64(this.Index)
}

func HandleFromID(id uint64) ColliderHandle {
	return ColliderHandle{Index: uint32(id), Generation: uint32(id >> 32)}
}

type colliderSlot struct {
	generation uint32
	collider   Collider
}

// ColliderRegistry is a generational slot map. It is not synchronized, DynamicNavMesh guards it.
type ColliderRegistry struct {
	slots    []colliderSlot
	freeList []uint32
	count    int
}

func NewColliderRegistry() *ColliderRegistry {
	return &ColliderRegistry{}
}

func (this *ColliderRegistry) Add(collider Collider) ColliderHandle {
	this.count++
	if n := len(this.freeList); n > 0 {
		index := this.freeList[n-1]
		this.freeList = this.freeList[:n-1]
		this.slots[index].collider = collider
		return ColliderHandle{index, this.slots[index].generation}
	}
	this.slots = append(this.slots, colliderSlot{collider: collider})
	return ColliderHandle{uint32(len(this.slots) - 1), 0}
}

func (this *ColliderRegistry) Get(handle ColliderHandle) (Collider, bool) {
	if int(handle.Index) >= len(this.slots) {
		return nil, false
	}
	slot := &this.slots[handle.Index]
	if slot.generation != handle.Generation || slot.collider == nil {
		return nil, false
	}
	return slot.collider, true
}

func (this *ColliderRegistry) Remove(handle ColliderHandle) (Collider, bool) {
	collider, ok := this.Get(handle)
	if !ok {
		return nil, false
	}
	slot := &this.slots[handle.Index]
	slot.generation++
	slot.collider = nil
	this.freeList = append(this.freeList, handle.Index)
	this.count--
	return collider, true
}

func (this *ColliderRegistry) Len() int {
	return this.count
}

// Each visits the live colliders in slot order.
func (this *ColliderRegistry) Each(visit func(ColliderHandle, Collider)) {
	for i := range this.slots {
		if c := this.slots[i].collider; c != nil {
			visit(ColliderHandle{uint32(i), this.slots[i].generation}, c)
		}
	}
}
