package physics

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/scenegraph"
	"github.com/san-kum/scenephys/internal/solver"
)

// MakeTrimesh walks the subtree under root and bakes every mesh node's
// geometry into one triangle mesh. Each mesh's vertices are taken to
// world space and then brought into the frame of root's rotation and
// translation, so the result follows the root body while keeping the
// authored scale. Duplicate vertices are welded. A subtree with no
// geometry yields a degenerate single-point placeholder and one
// warning; it is never a hard error, so the rest of the scene still
// loads.
func MakeTrimesh(graph SceneGraph, root scenegraph.NodeHandle, logger *slog.Logger) *solver.TriMesh {
	rootInv := graph.IsometricGlobalTransform(root).Inv()

	var (
		vertices []mgl32.Vec3
		indices  [][3]uint32
		welded   = make(map[[3]uint32]uint32)
	)
	weld := func(v mgl32.Vec3) uint32 {
		key := [3]uint32{
			math.Float32bits(v.X()),
			math.Float32bits(v.Y()),
			math.Float32bits(v.Z()),
		}
		if idx, ok := welded[key]; ok {
			return idx
		}
		idx := uint32(len(vertices))
		vertices = append(vertices, v)
		welded[key] = idx
		return idx
	}

	stack := []scenegraph.NodeHandle{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, graph.Children(node)...)

		verts, tris, ok := graph.MeshData(node)
		if !ok {
			continue
		}
		relative := rootInv.Mul4(graph.GlobalTransform(node))
		remap := make([]uint32, len(verts))
		for i, v := range verts {
			remap[i] = weld(mgl32.TransformCoordinate(v, relative))
		}
		for _, tri := range tris {
			indices = append(indices, [3]uint32{remap[tri[0]], remap[tri[1]], remap[tri[2]]})
		}
	}

	if len(indices) == 0 {
		logger.Warn("mesh subtree contains no geometry, substituting placeholder",
			"root", graph.Name(root))
		return solver.NewTriMesh(
			[]mgl32.Vec3{{0, 0, 0}},
			[][3]uint32{{0, 0, 0}},
		)
	}
	return solver.NewTriMesh(vertices, indices)
}
