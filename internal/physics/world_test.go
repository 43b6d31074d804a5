package physics

import (
	"context"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/solver"
)

// countingHandler tallies log records by level so tests can assert on
// warning and error counts.
type countingHandler struct {
	warns  *int
	errors *int
}

func newCountingLogger() (*slog.Logger, *int, *int) {
	warns, errors := new(int), new(int)
	return slog.New(countingHandler{warns: warns, errors: errors}), warns, errors
}

func (h countingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h countingHandler) Handle(_ context.Context, r slog.Record) error {
	switch r.Level {
	case slog.LevelWarn:
		*h.warns++
	case slog.LevelError:
		*h.errors++
	}
	return nil
}

func (h countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h countingHandler) WithGroup(string) slog.Handler      { return h }

func TestTranslationTableStaysInjective(t *testing.T) {
	w := NewWorld()

	var handles []BodyHandle
	for i := 0; i < 5; i++ {
		handles = append(handles, w.AddBody(solver.NewRigidBody(solver.BodyStatusDynamic)))
	}
	if !w.RemoveBody(handles[1]) || !w.RemoveBody(handles[3]) {
		t.Fatal("removing live bodies failed")
	}
	for i := 0; i < 3; i++ {
		handles = append(handles, w.AddBody(solver.NewRigidBody(solver.BodyStatusDynamic)))
	}

	seen := make(map[BodyHandle]bool)
	for _, h := range handles {
		if seen[h] {
			t.Fatalf("engine handle %s minted twice", h)
		}
		seen[h] = true
	}

	if w.BodyCount() != 6 {
		t.Fatalf("body count = %d, want 6", w.BodyCount())
	}
	live := w.BodyHandles()
	if len(live) != 6 {
		t.Fatalf("every live solver entity needs exactly one engine handle, got %d of 6", len(live))
	}
	for _, h := range live {
		if w.Body(h) == nil {
			t.Fatalf("live handle %s does not resolve", h)
		}
	}
	if w.Body(handles[1]) != nil || w.Body(handles[3]) != nil {
		t.Fatal("removed handles still resolve")
	}
}

func TestRemoveBodyCascades(t *testing.T) {
	w := NewWorld()
	b1 := w.AddBody(solver.NewRigidBody(solver.BodyStatusDynamic))
	b2 := w.AddBody(solver.NewRigidBody(solver.BodyStatusDynamic))

	c1, _ := w.AddCollider(solver.NewCollider(solver.Ball{Radius: 1}), b1)
	c2, _ := w.AddCollider(solver.NewCollider(solver.Cuboid{HalfExtents: mgl32.Vec3{1, 1, 1}}), b1)
	keep, _ := w.AddCollider(solver.NewCollider(solver.Ball{Radius: 2}), b2)
	j, ok := w.AddJoint(b1, b2, solver.BallJoint{})
	if !ok {
		t.Fatal("joint insert failed")
	}

	if !w.RemoveBody(b1) {
		t.Fatal("remove failed")
	}
	if w.ContainsBody(b1) {
		t.Fatal("removed body still present")
	}
	if w.ContainsCollider(c1) || w.ContainsCollider(c2) {
		t.Fatal("cascade left colliders behind")
	}
	if w.Joint(j) != nil {
		t.Fatal("cascade left joint behind")
	}
	if !w.ContainsCollider(keep) {
		t.Fatal("cascade removed an unrelated collider")
	}
	if w.RemoveBody(b1) {
		t.Fatal("second remove reported success")
	}
}

func TestAccessorsReturnNotFound(t *testing.T) {
	w := NewWorld()
	if w.Body(NewBodyHandle()) != nil {
		t.Fatal("unknown body handle resolved")
	}
	if w.Collider(NewColliderHandle()) != nil {
		t.Fatal("unknown collider handle resolved")
	}
	if w.Joint(NewJointHandle()) != nil {
		t.Fatal("unknown joint handle resolved")
	}
	if _, ok := w.ColliderParent(NewColliderHandle()); ok {
		t.Fatal("unknown collider has a parent")
	}
	if w.RemoveCollider(NewColliderHandle()) || w.RemoveJoint(NewJointHandle()) {
		t.Fatal("removing unknown handles reported success")
	}
}

func ballBodyAt(w *World, z float32) BodyHandle {
	b := solver.NewRigidBody(solver.BodyStatusStatic)
	b.Position = mgl32.Vec3{0, 0, z}
	h := w.AddBody(b)
	w.AddCollider(solver.NewCollider(solver.Ball{Radius: 1}), h)
	return h
}

func TestCastRaySortedAndBounded(t *testing.T) {
	w := NewWorld()
	ballBodyAt(w, 10)
	ballBodyAt(w, 5)
	ballBodyAt(w, 15)

	var storage SliceStorage
	w.CastRay(RayCastOptions{
		Direction:   mgl32.Vec3{0, 0, 1},
		MaxLen:      12,
		SortResults: true,
	}, &storage)

	if len(storage.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(storage.Hits))
	}
	for i, hit := range storage.Hits {
		if hit.TOI > 12 {
			t.Fatalf("hit %d beyond max length: %v", i, hit.TOI)
		}
		if i > 0 && hit.TOI < storage.Hits[i-1].TOI {
			t.Fatal("hits not sorted by distance")
		}
	}
	if got := storage.Hits[0].TOI; got < 3.99 || got > 4.01 {
		t.Fatalf("closest hit at %v, want 4", got)
	}
	if storage.Hits[0].Position.Sub(mgl32.Vec3{0, 0, 4}).Len() > 1e-4 {
		t.Fatalf("hit position = %v, want (0,0,4)", storage.Hits[0].Position)
	}
}

func TestCastRayFixedStorageReportsDropped(t *testing.T) {
	w := NewWorld()
	ballBodyAt(w, 5)
	ballBodyAt(w, 10)

	storage := NewFixedStorage(1)
	w.CastRay(RayCastOptions{
		Direction: mgl32.Vec3{0, 0, 1},
		MaxLen:    20,
	}, storage)

	if len(storage.Hits()) != 1 {
		t.Fatalf("got %d hits, want 1", len(storage.Hits()))
	}
	if storage.Dropped() == 0 {
		t.Fatal("overflow not reported")
	}
}

func TestStepIntegratesGravityAndTracksTime(t *testing.T) {
	w := NewWorld()
	body := solver.NewRigidBody(solver.BodyStatusDynamic)
	body.Position = mgl32.Vec3{0, 10, 0}
	h := w.AddBody(body)

	for i := 0; i < 60; i++ {
		w.Step()
	}

	b := w.Body(h)
	if b.Position.Y() >= 10 {
		t.Fatalf("body did not fall: y = %v", b.Position.Y())
	}
	if b.LinVel.Y() >= 0 {
		t.Fatalf("velocity not downward: %v", b.LinVel.Y())
	}

	w.Statistics().Reset()
	if w.Statistics().StepTime != 0 || w.Statistics().TotalRayCastTime != 0 {
		t.Fatal("reset left accumulators non-zero")
	}
}

func TestCastRayHonorsGroups(t *testing.T) {
	w := NewWorld()
	b := solver.NewRigidBody(solver.BodyStatusStatic)
	b.Position = mgl32.Vec3{0, 0, 5}
	h := w.AddBody(b)
	c := solver.NewCollider(solver.Ball{Radius: 1})
	c.CollisionGroups = solver.InteractionGroups(0x00010001)
	w.AddCollider(c, h)

	var storage SliceStorage
	w.CastRay(RayCastOptions{
		Direction: mgl32.Vec3{0, 0, 1},
		MaxLen:    20,
		Groups:    solver.InteractionGroups(0x00020002),
	}, &storage)
	if len(storage.Hits) != 0 {
		t.Fatal("disjoint groups still intersected")
	}

	w.CastRay(RayCastOptions{
		Direction: mgl32.Vec3{0, 0, 1},
		MaxLen:    20,
		Groups:    solver.InteractionGroups(0x00010001),
	}, &storage)
	if len(storage.Hits) != 1 {
		t.Fatal("matching groups did not intersect")
	}
}
