package dynamic

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestColliderRegistryHandleSurvivesSlotReuse(t *testing.T) {
	reg := NewColliderRegistry()
	a := NewSphereCollider(mgl32.Vec3{1, 0, 1}, 1, 0, 1)
	b := NewSphereCollider(mgl32.Vec3{5, 0, 5}, 1, 0, 1)

	ha := reg.Add(a)
	if _, ok := reg.Remove(ha); !ok {
		t.Fatal("remove of a live handle failed")
	}
	hb := reg.Add(b)
	if hb.Index != ha.Index {
		t.Fatalf("slot %d not reused, got %d", ha.Index, hb.Index)
	}
	if hb.Generation == ha.Generation {
		t.Fatal("reused slot kept its generation")
	}
	if c, ok := reg.Get(ha); ok || c != nil {
		t.Error("stale handle resolved")
	}
	if _, ok := reg.Remove(ha); ok {
		t.Error("stale handle removed the new collider")
	}
	if c, ok := reg.Get(hb); !ok || c != Collider(b) {
		t.Errorf("live handle resolved to %v, %v", c, ok)
	}
	if reg.Len() != 1 {
		t.Errorf("len %d, want 1", reg.Len())
	}
	if got := HandleFromID(hb.ID()); got != hb {
		t.Errorf("id round trip %v, want %v", got, hb)
	}
	visited := 0
	reg.Each(func(h ColliderHandle, c Collider) {
		visited++
		if h != hb {
			t.Errorf("visited %v, want %v", h, hb)
		}
	})
	if visited != 1 {
		t.Errorf("visited %d colliders", visited)
	}
	if _, ok := reg.Get(ColliderHandle{Index: 7}); ok {
		t.Error("out of range handle resolved")
	}
}
