package physics

import (
	"github.com/san-kum/scenephys/internal/scenegraph"
	"github.com/san-kum/scenephys/internal/solver"
)

// Resource is an externally authored scene fragment whose physics
// content can be instantiated into a host world.
type Resource struct {
	Name   string
	World  *World
	Binder *Binder
}

// ResourceLink records which host bodies a resource instantiation
// produced, keyed by the source resource's own engine handles. Later
// edits to the source can be re-applied through it.
type ResourceLink struct {
	Name   string
	Bodies map[BodyHandle]BodyHandle
}

// Embed merges the resource's bodies, colliders and joints into the
// host world. nodeRemap translates the resource's node handles to the
// cloned nodes in the host scene; hostBinder and graph belong to the
// host. Bodies go first, then colliders, then joints, because both of
// the latter reference bodies by handle. Trimesh colliders re-derive
// geometry from the remapped node rather than copying source geometry.
// An individual collider or joint that fails to resolve is logged and
// skipped without aborting the rest of the embed.
func (w *World) Embed(
	res *Resource,
	nodeRemap map[scenegraph.NodeHandle]scenegraph.NodeHandle,
	hostBinder *Binder,
	graph SceneGraph,
) ResourceLink {
	link := ResourceLink{
		Name:   res.Name,
		Bodies: make(map[BodyHandle]BodyHandle, res.World.BodyCount()),
	}

	src := res.World
	for _, sh := range src.bodies.Handles() {
		srcEngine, ok := src.bodyMap.KeyOf(sh)
		if !ok {
			w.logger.Error("embed: source body has no engine handle, skipping", "resource", res.Name)
			continue
		}
		link.Bodies[srcEngine] = w.AddBody(src.bodies.Get(sh).CopyWithoutColliders())
	}

	// Rebind the cloned nodes to the bodies just created so trimesh
	// regeneration below can find them.
	res.Binder.ForEach(func(node scenegraph.NodeHandle, srcBody BodyHandle) {
		newNode, okNode := nodeRemap[node]
		newBody, okBody := link.Bodies[srcBody]
		if !okNode || !okBody {
			w.logger.Error("embed: dangling node binding, skipping",
				"resource", res.Name, "body", srcBody.String())
			return
		}
		hostBinder.Bind(newNode, newBody)
	})

	for _, sh := range src.colliders.Handles() {
		c := src.colliders.Get(sh)
		srcParent, ok := src.bodyMap.KeyOf(c.Parent())
		if !ok {
			w.logger.Error("embed: collider parent has no engine handle, skipping", "resource", res.Name)
			continue
		}
		newParent, ok := link.Bodies[srcParent]
		if !ok {
			w.logger.Error("embed: collider parent missing from link map, skipping",
				"resource", res.Name, "parent", srcParent.String())
			continue
		}

		clone := *c
		if c.Shape.Type() == solver.ShapeTriMesh {
			node, ok := hostBinder.NodeOf(newParent)
			if !ok || !graph.IsValid(node) {
				w.logger.Error("embed: trimesh collider has no valid bound node, skipping",
					"resource", res.Name, "parent", newParent.String())
				continue
			}
			clone.Shape = MakeTrimesh(graph, node, w.logger)
		}
		if _, ok := w.AddCollider(clone, newParent); !ok {
			w.logger.Error("embed: collider insert failed, skipping", "resource", res.Name)
		}
	}

	for _, sh := range src.joints.Handles() {
		j := src.joints.Get(sh)
		srcB1, ok1 := src.bodyMap.KeyOf(j.Body1)
		srcB2, ok2 := src.bodyMap.KeyOf(j.Body2)
		if !ok1 || !ok2 {
			w.logger.Error("embed: joint endpoint has no engine handle, skipping", "resource", res.Name)
			continue
		}
		b1, ok1 := link.Bodies[srcB1]
		b2, ok2 := link.Bodies[srcB2]
		if !ok1 || !ok2 {
			w.logger.Error("embed: joint endpoint missing from link map, skipping", "resource", res.Name)
			continue
		}
		if _, ok := w.AddJoint(b1, b2, j.Params); !ok {
			w.logger.Error("embed: joint insert failed, skipping", "resource", res.Name)
		}
	}

	w.links = append(w.links, link)
	return link
}
