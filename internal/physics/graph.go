package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/scenegraph"
)

// SceneGraph is the narrow read-only view of the scene the physics
// layer needs: node validity, hierarchy, transforms and mesh geometry.
// The concrete graph lives elsewhere and is never mutated from here.
type SceneGraph interface {
	IsValid(node scenegraph.NodeHandle) bool
	Children(node scenegraph.NodeHandle) []scenegraph.NodeHandle
	Name(node scenegraph.NodeHandle) string
	// GlobalTransform is the node's full world transform, scale included.
	GlobalTransform(node scenegraph.NodeHandle) mgl32.Mat4
	// IsometricGlobalTransform is the world transform with scale
	// discarded at every level, leaving rotation and translation only.
	IsometricGlobalTransform(node scenegraph.NodeHandle) mgl32.Mat4
	MeshData(node scenegraph.NodeHandle) (vertices []mgl32.Vec3, triangles [][3]uint32, ok bool)
}
