package solver

import "testing"

func TestArenaInsertGet(t *testing.T) {
	var a Arena[int]
	h1 := a.Insert(10)
	h2 := a.Insert(20)

	if v := a.Get(h1); v == nil || *v != 10 {
		t.Fatalf("Get(h1) = %v, want 10", v)
	}
	if v := a.Get(h2); v == nil || *v != 20 {
		t.Fatalf("Get(h2) = %v, want 20", v)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

func TestArenaFreshInsertsAreDense(t *testing.T) {
	var a Arena[int]
	for i := 0; i < 4; i++ {
		h := a.Insert(i)
		if h.Index != uint32(i) || h.Generation != 0 {
			t.Errorf("insert %d minted %v, want {%d 0}", i, h, i)
		}
	}
}

func TestArenaSlotReuseBumpsGeneration(t *testing.T) {
	var a Arena[int]
	h := a.Insert(1)
	if _, ok := a.Remove(h); !ok {
		t.Fatal("Remove failed")
	}
	if a.Get(h) != nil {
		t.Error("stale handle resolved after removal")
	}

	h2 := a.Insert(2)
	if h2.Index != h.Index {
		t.Errorf("freed slot not reused: %v vs %v", h2, h)
	}
	if h2.Generation == h.Generation {
		t.Error("generation not bumped on reuse")
	}
	if a.Get(h) != nil {
		t.Error("stale handle resolved against reused slot")
	}
	if v := a.Get(h2); v == nil || *v != 2 {
		t.Errorf("Get(h2) = %v, want 2", v)
	}
}

func TestArenaHandlesIndexOrdered(t *testing.T) {
	var a Arena[int]
	a.Insert(0)
	h1 := a.Insert(1)
	a.Insert(2)
	a.Remove(h1)

	hs := a.Handles()
	if len(hs) != 2 {
		t.Fatalf("Handles() returned %d entries, want 2", len(hs))
	}
	if hs[0].Index != 0 || hs[1].Index != 2 {
		t.Errorf("handles out of order: %v", hs)
	}
}

func TestBodyRemoveCascades(t *testing.T) {
	var bodies BodySet
	var colliders ColliderSet
	var joints JointSet

	b1 := bodies.Insert(NewRigidBody(BodyStatusDynamic))
	b2 := bodies.Insert(NewRigidBody(BodyStatusDynamic))

	c1, ok := colliders.Insert(NewCollider(Ball{Radius: 1}), b1, &bodies)
	if !ok {
		t.Fatal("collider insert failed")
	}
	c2, _ := colliders.Insert(NewCollider(Ball{Radius: 2}), b1, &bodies)
	cOther, _ := colliders.Insert(NewCollider(Ball{Radius: 3}), b2, &bodies)

	j, ok := joints.Insert(&bodies, b1, b2, BallJoint{})
	if !ok {
		t.Fatal("joint insert failed")
	}

	_, removedColliders, removedJoints := bodies.Remove(b1, &colliders, &joints)
	if len(removedColliders) != 2 {
		t.Fatalf("removed %d colliders, want 2", len(removedColliders))
	}
	if len(removedJoints) != 1 || removedJoints[0] != j {
		t.Fatalf("removed joints = %v, want [%v]", removedJoints, j)
	}

	if colliders.Get(c1) != nil || colliders.Get(c2) != nil {
		t.Error("cascaded colliders still resolve")
	}
	if joints.Get(j) != nil {
		t.Error("cascaded joint still resolves")
	}
	if colliders.Get(cOther) == nil {
		t.Error("unrelated collider was removed")
	}
	if bodies.Get(b2) == nil {
		t.Error("unrelated body was removed")
	}
}

func TestColliderInsertStaleParent(t *testing.T) {
	var bodies BodySet
	var colliders ColliderSet
	var joints JointSet

	b := bodies.Insert(NewRigidBody(BodyStatusDynamic))
	bodies.Remove(b, &colliders, &joints)

	if _, ok := colliders.Insert(NewCollider(Ball{Radius: 1}), b, &bodies); ok {
		t.Error("insert against stale parent succeeded")
	}
}
