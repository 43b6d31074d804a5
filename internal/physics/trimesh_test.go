package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/scenegraph"
	"github.com/san-kum/scenephys/internal/solver"
)

func quadMesh() *scenegraph.MeshData {
	return &scenegraph.MeshData{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
		Indices:  [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

func TestMakeTrimeshPlaceholderAndSingleWarning(t *testing.T) {
	g := scenegraph.New()
	root := g.AddNode(scenegraph.NewNode("empty"))
	child := g.AddNode(scenegraph.NewNode("still empty"))
	g.Link(root, child)

	logger, warns, _ := newCountingLogger()
	mesh := MakeTrimesh(g, root, logger)

	if *warns != 1 {
		t.Fatalf("got %d warnings, want exactly 1", *warns)
	}
	if len(mesh.Vertices) != 1 || len(mesh.Indices) != 1 {
		t.Fatalf("placeholder has %d vertices and %d triangles, want 1 and 1",
			len(mesh.Vertices), len(mesh.Indices))
	}
	if mesh.Vertices[0] != (mgl32.Vec3{}) {
		t.Fatalf("placeholder vertex = %v, want origin", mesh.Vertices[0])
	}
}

func TestMakeTrimeshBakesRelativeTransform(t *testing.T) {
	g := scenegraph.New()
	rootNode := scenegraph.NewNode("root")
	rootNode.Translation = mgl32.Vec3{0, 0, 5}
	root := g.AddNode(rootNode)

	meshNode := scenegraph.NewNode("mesh")
	meshNode.Translation = mgl32.Vec3{1, 0, 0}
	meshNode.Scale = mgl32.Vec3{2, 2, 2}
	meshNode.Mesh = quadMesh()
	mh := g.AddNode(meshNode)
	g.Link(root, mh)

	logger, warns, _ := newCountingLogger()
	mesh := MakeTrimesh(g, root, logger)
	if *warns != 0 {
		t.Fatalf("unexpected warnings: %d", *warns)
	}

	// The mesh node's own scale and translation bake into the vertices,
	// relative to the root's rotation and translation.
	want := mgl32.Vec3{2*1 + 1, 0, 0}
	if mesh.Vertices[1].Sub(want).Len() > 1e-5 {
		t.Fatalf("baked vertex = %v, want %v", mesh.Vertices[1], want)
	}
	if len(mesh.Indices) != 2 {
		t.Fatalf("got %d triangles, want 2", len(mesh.Indices))
	}
}

func TestMakeTrimeshWeldsDuplicateVertices(t *testing.T) {
	g := scenegraph.New()
	node := scenegraph.NewNode("mesh")
	node.Mesh = &scenegraph.MeshData{
		Vertices: []mgl32.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		},
		Indices: [][3]uint32{{0, 1, 2}, {3, 4, 5}},
	}
	h := g.AddNode(node)

	logger, _, _ := newCountingLogger()
	mesh := MakeTrimesh(g, h, logger)

	if len(mesh.Vertices) != 4 {
		t.Fatalf("welded to %d vertices, want 4", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 2 {
		t.Fatalf("got %d triangles, want 2", len(mesh.Indices))
	}
}

func TestResolveTrimeshFromBoundNode(t *testing.T) {
	g := scenegraph.New()
	node := scenegraph.NewNode("ground")
	node.Mesh = quadMesh()
	nh := g.AddNode(node)

	w := NewWorld()
	logger, _, _ := newCountingLogger()
	w.SetLogger(logger)

	bh := w.AddBody(solver.NewRigidBody(solver.BodyStatusStatic))
	shape := MakeTrimesh(g, nh, logger)
	if _, ok := w.AddCollider(solver.NewCollider(shape), bh); !ok {
		t.Fatal("collider insert failed")
	}

	binder := NewBinder()
	binder.Bind(nh, bh)

	desc := w.GenerateDesc()
	if _, ok := desc.Colliders[0].Shape.(*TrimeshDesc); !ok {
		t.Fatalf("trimesh did not snapshot to a placeholder: %T", desc.Colliders[0].Shape)
	}

	unresolved := NewUnresolved(desc)
	unresolved.SetLogger(logger)
	resolved, err := unresolved.Resolve(binder, g)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ColliderCount() != 1 {
		t.Fatalf("collider count = %d, want 1", resolved.ColliderCount())
	}
	body := resolved.Body(bh)
	mesh := resolved.colliders.Get(body.Colliders()[0]).Shape.(*solver.TriMesh)
	if len(mesh.Vertices) != 4 || len(mesh.Indices) != 2 {
		t.Fatalf("regenerated mesh has %d vertices and %d triangles, want 4 and 2",
			len(mesh.Vertices), len(mesh.Indices))
	}
}

func TestResolveSkipsUnboundTrimesh(t *testing.T) {
	g := scenegraph.New()
	node := scenegraph.NewNode("ground")
	node.Mesh = quadMesh()
	nh := g.AddNode(node)

	w := NewWorld()
	logger, _, errors := newCountingLogger()
	w.SetLogger(logger)
	bh := w.AddBody(solver.NewRigidBody(solver.BodyStatusStatic))
	shape := MakeTrimesh(g, nh, logger)
	if _, ok := w.AddCollider(solver.NewCollider(shape), bh); !ok {
		t.Fatal("collider insert failed")
	}

	desc := w.GenerateDesc()
	unresolved := NewUnresolved(desc)
	unresolved.SetLogger(logger)
	// Empty binder: the trimesh has no bound node.
	resolved, err := unresolved.Resolve(NewBinder(), g)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.BodyCount() != 1 {
		t.Fatal("body lost")
	}
	if resolved.ColliderCount() != 0 {
		t.Fatal("unbound trimesh collider was not skipped")
	}
	if *errors == 0 {
		t.Fatal("skip was not reported")
	}
}
