package scenegraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestHandleLifecycle(t *testing.T) {
	g := New()
	a := g.AddNode(NewNode("a"))
	if !g.IsValid(a) {
		t.Fatal("fresh handle invalid")
	}
	g.Remove(a)
	if g.IsValid(a) {
		t.Fatal("stale handle still valid")
	}
	b := g.AddNode(NewNode("b"))
	if b.Index != a.Index || b.Generation != a.Generation+1 {
		t.Fatalf("slot reuse: got %+v, want index %d gen %d", b, a.Index, a.Generation+1)
	}
	if g.IsValid(a) {
		t.Fatal("old generation resolves after reuse")
	}
}

func TestRemoveSubtree(t *testing.T) {
	g := New()
	root := g.AddNode(NewNode("root"))
	child := g.AddNode(NewNode("child"))
	grand := g.AddNode(NewNode("grand"))
	g.Link(root, child)
	g.Link(child, grand)

	g.Remove(child)
	if g.IsValid(child) || g.IsValid(grand) {
		t.Fatal("subtree not freed")
	}
	if len(g.Children(root)) != 0 {
		t.Fatal("removed child still linked to parent")
	}
}

func TestGlobalTransformComposition(t *testing.T) {
	g := New()
	root := NewNode("root")
	root.Translation = mgl32.Vec3{1, 0, 0}
	rh := g.AddNode(root)

	child := NewNode("child")
	child.Translation = mgl32.Vec3{0, 2, 0}
	ch := g.AddNode(child)
	g.Link(rh, ch)

	p := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, g.GlobalTransform(ch))
	want := mgl32.Vec3{1, 2, 0}
	if p.Sub(want).Len() > 1e-5 {
		t.Fatalf("composed origin = %v, want %v", p, want)
	}
}

func TestIsometricTransformIgnoresScale(t *testing.T) {
	g := New()
	root := NewNode("root")
	root.Scale = mgl32.Vec3{10, 10, 10}
	root.Translation = mgl32.Vec3{0, 0, 5}
	root.Rotation = mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})
	rh := g.AddNode(root)

	// Scale must stretch points under the full transform but not the
	// isometric one.
	full := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, g.GlobalTransform(rh))
	iso := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, g.IsometricGlobalTransform(rh))

	wantFull := mgl32.Vec3{0, 0, -5} // rotated to -z, scaled by 10, shifted +5z
	wantIso := mgl32.Vec3{0, 0, 4}
	if full.Sub(wantFull).Len() > 1e-4 {
		t.Fatalf("full transform = %v, want %v", full, wantFull)
	}
	if iso.Sub(wantIso).Len() > 1e-4 {
		t.Fatalf("isometric transform = %v, want %v", iso, wantIso)
	}
}

func TestMeshData(t *testing.T) {
	g := New()
	plain := g.AddNode(NewNode("plain"))
	if _, _, ok := g.MeshData(plain); ok {
		t.Fatal("node without mesh reports geometry")
	}

	mesh := NewNode("mesh")
	mesh.Mesh = &MeshData{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:  [][3]uint32{{0, 1, 2}},
	}
	mh := g.AddNode(mesh)
	verts, tris, ok := g.MeshData(mh)
	if !ok || len(verts) != 3 || len(tris) != 1 {
		t.Fatalf("mesh payload lost: ok=%v verts=%d tris=%d", ok, len(verts), len(tris))
	}
}
