package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/scenegraph"
	"github.com/san-kum/scenephys/internal/solver"
)

func TestEmbedBodyWithTrimesh(t *testing.T) {
	logger, _, errCount := newCountingLogger()

	// Source resource: one body with a trimesh derived from the source
	// graph's node.
	srcGraph := scenegraph.New()
	srcNode := scenegraph.NewNode("src mesh")
	srcNode.Mesh = quadMesh()
	srcHandle := srcGraph.AddNode(srcNode)

	src := NewWorld()
	src.SetLogger(logger)
	srcBody := src.AddBody(solver.NewRigidBody(solver.BodyStatusStatic))
	src.AddCollider(solver.NewCollider(MakeTrimesh(srcGraph, srcHandle, logger)), srcBody)
	srcBinder := NewBinder()
	srcBinder.Bind(srcHandle, srcBody)

	// Host scene: the node subtree was cloned, with different geometry
	// to prove the embed re-derives from the remapped node instead of
	// copying source triangles.
	hostGraph := scenegraph.New()
	hostNode := scenegraph.NewNode("cloned mesh")
	hostNode.Mesh = &scenegraph.MeshData{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 0, 2}},
		Indices:  [][3]uint32{{0, 1, 2}},
	}
	hostHandle := hostGraph.AddNode(hostNode)

	host := NewWorld()
	host.SetLogger(logger)
	hostBinder := NewBinder()

	link := host.Embed(
		&Resource{Name: "crate.scene", World: src, Binder: srcBinder},
		map[scenegraph.NodeHandle]scenegraph.NodeHandle{srcHandle: hostHandle},
		hostBinder,
		hostGraph,
	)

	if *errCount != 0 {
		t.Fatalf("embed logged %d errors", *errCount)
	}
	if host.BodyCount() != 1 || host.ColliderCount() != 1 {
		t.Fatalf("host has %d bodies and %d colliders, want 1 and 1",
			host.BodyCount(), host.ColliderCount())
	}

	newBody, ok := link.Bodies[srcBody]
	if !ok {
		t.Fatal("link map missing the source body")
	}
	if newBody == srcBody {
		t.Fatal("host body reuses the source engine handle")
	}
	if !host.ContainsBody(newBody) {
		t.Fatal("link points at a dead body")
	}
	if bound, ok := hostBinder.BodyOf(hostHandle); !ok || bound != newBody {
		t.Fatal("cloned node not rebound to the new body")
	}
	if src.ContainsBody(newBody) {
		t.Fatal("new handle leaked into the source world")
	}

	body := host.Body(newBody)
	mesh, ok := host.colliders.Get(body.Colliders()[0]).Shape.(*solver.TriMesh)
	if !ok {
		t.Fatal("embedded collider is not a trimesh")
	}
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 1 {
		t.Fatalf("geometry not re-derived from host node: %d vertices, %d triangles",
			len(mesh.Vertices), len(mesh.Indices))
	}
	if mesh.Vertices[1] != (mgl32.Vec3{2, 0, 0}) {
		t.Fatalf("vertex = %v, want host geometry", mesh.Vertices[1])
	}
	if link.Name != "crate.scene" {
		t.Fatalf("link name = %q", link.Name)
	}
}

func TestEmbedRemapsJoints(t *testing.T) {
	logger, _, errCount := newCountingLogger()

	src := NewWorld()
	src.SetLogger(logger)
	a := src.AddBody(solver.NewRigidBody(solver.BodyStatusDynamic))
	b := src.AddBody(solver.NewRigidBody(solver.BodyStatusDynamic))
	if _, ok := src.AddJoint(a, b, solver.RevoluteJoint{
		LocalAxis1: mgl32.Vec3{0, 1, 0},
		LocalAxis2: mgl32.Vec3{0, 1, 0},
	}); !ok {
		t.Fatal("source joint insert failed")
	}

	host := NewWorld()
	host.SetLogger(logger)
	link := host.Embed(
		&Resource{Name: "hinge.scene", World: src, Binder: NewBinder()},
		nil,
		NewBinder(),
		scenegraph.New(),
	)

	if *errCount != 0 {
		t.Fatalf("embed logged %d errors", *errCount)
	}
	if host.BodyCount() != 2 || host.JointCount() != 1 {
		t.Fatalf("host has %d bodies and %d joints, want 2 and 1",
			host.BodyCount(), host.JointCount())
	}
	if len(link.Bodies) != 2 {
		t.Fatalf("link map has %d entries, want 2", len(link.Bodies))
	}
	if got := len(host.ResourceLinks()); got != 1 {
		t.Fatalf("host records %d resource links, want 1", got)
	}
}

func TestEmbedSkipsColliderWithoutRemappedNode(t *testing.T) {
	logger, _, errCount := newCountingLogger()

	srcGraph := scenegraph.New()
	srcNode := scenegraph.NewNode("mesh")
	srcNode.Mesh = quadMesh()
	srcHandle := srcGraph.AddNode(srcNode)

	src := NewWorld()
	src.SetLogger(logger)
	srcBody := src.AddBody(solver.NewRigidBody(solver.BodyStatusStatic))
	src.AddCollider(solver.NewCollider(MakeTrimesh(srcGraph, srcHandle, logger)), srcBody)
	srcBinder := NewBinder()
	srcBinder.Bind(srcHandle, srcBody)

	host := NewWorld()
	host.SetLogger(logger)
	// Empty remap: the cloned node is unknown, so the binding and the
	// trimesh collider cannot resolve.
	host.Embed(
		&Resource{Name: "broken.scene", World: src, Binder: srcBinder},
		nil,
		NewBinder(),
		scenegraph.New(),
	)

	if host.BodyCount() != 1 {
		t.Fatal("body should still embed")
	}
	if host.ColliderCount() != 0 {
		t.Fatal("unresolvable trimesh collider was not skipped")
	}
	if *errCount == 0 {
		t.Fatal("skips were not reported")
	}
}
