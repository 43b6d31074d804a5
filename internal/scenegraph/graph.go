// Package scenegraph is a minimal node hierarchy with TRS transforms
// and optional mesh payloads. It backs the demo scene and the tests;
// the physics core only sees it through a narrow query interface.
package scenegraph

import "github.com/go-gl/mathgl/mgl32"

// NodeHandle is a generation-tagged index into the graph's node pool.
type NodeHandle struct {
	Index      uint32
	Generation uint32
}

// MeshData is the triangle geometry a mesh node supplies.
type MeshData struct {
	Vertices []mgl32.Vec3
	Indices  [][3]uint32
}

// Node is one element of the hierarchy. Transforms are local to the
// parent.
type Node struct {
	Name        string
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Mesh        *MeshData

	parent    NodeHandle
	hasParent bool
	children  []NodeHandle
}

// NewNode returns a node with an identity transform.
func NewNode(name string) Node {
	return Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

type nodeSlot struct {
	node       Node
	generation uint32
	occupied   bool
}

// Graph owns the node pool.
type Graph struct {
	slots []nodeSlot
	free  []uint32
}

func New() *Graph {
	return &Graph{}
}

// AddNode stores n and returns its handle.
func (g *Graph) AddNode(n Node) NodeHandle {
	if k := len(g.free); k > 0 {
		idx := g.free[k-1]
		g.free = g.free[:k-1]
		s := &g.slots[idx]
		s.node = n
		s.occupied = true
		return NodeHandle{Index: idx, Generation: s.generation}
	}
	g.slots = append(g.slots, nodeSlot{node: n, occupied: true})
	return NodeHandle{Index: uint32(len(g.slots) - 1)}
}

// Node returns the node at h, nil if h is stale.
func (g *Graph) Node(h NodeHandle) *Node {
	if int(h.Index) >= len(g.slots) {
		return nil
	}
	s := &g.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return nil
	}
	return &s.node
}

// IsValid reports whether h resolves to a live node.
func (g *Graph) IsValid(h NodeHandle) bool {
	return g.Node(h) != nil
}

// Link makes child a child of parent.
func (g *Graph) Link(parent, child NodeHandle) {
	p := g.Node(parent)
	c := g.Node(child)
	if p == nil || c == nil {
		return
	}
	if c.hasParent {
		g.unlink(child)
	}
	c.parent = parent
	c.hasParent = true
	p.children = append(p.children, child)
}

func (g *Graph) unlink(child NodeHandle) {
	c := g.Node(child)
	if c == nil || !c.hasParent {
		return
	}
	if p := g.Node(c.parent); p != nil {
		for i, h := range p.children {
			if h == child {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	c.hasParent = false
}

// Remove frees the node and its entire subtree.
func (g *Graph) Remove(h NodeHandle) {
	n := g.Node(h)
	if n == nil {
		return
	}
	for _, child := range append([]NodeHandle(nil), n.children...) {
		g.Remove(child)
	}
	g.unlink(h)
	s := &g.slots[h.Index]
	s.node = Node{}
	s.occupied = false
	s.generation++
	g.free = append(g.free, h.Index)
}

// Children returns the node's direct children.
func (g *Graph) Children(h NodeHandle) []NodeHandle {
	n := g.Node(h)
	if n == nil {
		return nil
	}
	return n.children
}

// Name returns the node's name, empty for stale handles.
func (g *Graph) Name(h NodeHandle) string {
	n := g.Node(h)
	if n == nil {
		return ""
	}
	return n.Name
}

// GlobalTransform composes translation, rotation and scale up to the
// root.
func (g *Graph) GlobalTransform(h NodeHandle) mgl32.Mat4 {
	n := g.Node(h)
	if n == nil {
		return mgl32.Ident4()
	}
	local := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z()).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
	if n.hasParent {
		return g.GlobalTransform(n.parent).Mul4(local)
	}
	return local
}

// IsometricGlobalTransform composes rotation and translation only,
// discarding scale at every level.
func (g *Graph) IsometricGlobalTransform(h NodeHandle) mgl32.Mat4 {
	n := g.Node(h)
	if n == nil {
		return mgl32.Ident4()
	}
	local := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z()).
		Mul4(n.Rotation.Mat4())
	if n.hasParent {
		return g.IsometricGlobalTransform(n.parent).Mul4(local)
	}
	return local
}

// MeshData returns the node's mesh geometry if it has one.
func (g *Graph) MeshData(h NodeHandle) ([]mgl32.Vec3, [][3]uint32, bool) {
	n := g.Node(h)
	if n == nil || n.Mesh == nil {
		return nil, nil, false
	}
	return n.Mesh.Vertices, n.Mesh.Indices, true
}
