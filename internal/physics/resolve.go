package physics

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/san-kum/scenephys/internal/solver"
)

// UnresolvedWorld holds a pending descriptor set after scene
// deserialization. Nothing is live until Resolve runs; keeping the two
// states as separate types makes "resolve before use" impossible to
// forget.
type UnresolvedWorld struct {
	desc   PhysicsDesc
	logger *slog.Logger
}

// NewUnresolved wraps a loaded descriptor set.
func NewUnresolved(desc PhysicsDesc) *UnresolvedWorld {
	return &UnresolvedWorld{desc: desc, logger: slog.Default()}
}

func (u *UnresolvedWorld) SetLogger(logger *slog.Logger) {
	if logger != nil {
		u.logger = logger
	}
}

// Desc exposes the pending descriptor set.
func (u *UnresolvedWorld) Desc() *PhysicsDesc {
	return &u.desc
}

// Resolve materializes the descriptor set into a live world: bodies
// first, then colliders, then joints, since colliders and joints
// reference bodies by handle. Trimesh colliders carry no geometry;
// their triangles are rebuilt from the node bound to the owning body.
// A collider whose binding is missing or invalid is skipped with an
// error log, leaving its body with fewer colliders than authored.
func (u *UnresolvedWorld) Resolve(binder *Binder, graph SceneGraph) (*World, error) {
	w := NewWorld()
	w.SetLogger(u.logger)
	w.Gravity = u.desc.Gravity
	w.IntegrationParameters = u.desc.IntegrationParameters.Params()

	bodyEngine, err := engineByDense(u.desc.BodyHandleMap, len(u.desc.Bodies), "body")
	if err != nil {
		return nil, err
	}
	colliderEngine, err := engineByDense(u.desc.ColliderHandleMap, len(u.desc.Colliders), "collider")
	if err != nil {
		return nil, err
	}
	jointEngine, err := engineByDense(u.desc.JointHandleMap, len(u.desc.Joints), "joint")
	if err != nil {
		return nil, err
	}

	for i := range u.desc.Bodies {
		desc := &u.desc.Bodies[i]
		body, err := desc.Body()
		if err != nil {
			return nil, fmt.Errorf("physics: body %d: %w", i, err)
		}
		w.bodyMap.Insert(BodyHandle(bodyEngine[i]), w.bodies.Insert(body))
	}

	for i := range u.desc.Colliders {
		desc := &u.desc.Colliders[i]
		parent, ok := w.bodyMap.ValueOf(desc.Parent)
		if !ok {
			u.logger.Error("collider references unknown body, skipping",
				"collider", i, "parent", desc.Parent.String())
			continue
		}

		var shape solver.Shape
		if _, isTrimesh := desc.Shape.(*TrimeshDesc); isTrimesh {
			node, ok := binder.NodeOf(desc.Parent)
			if !ok {
				u.logger.Error("trimesh collider has no bound node, skipping",
					"collider", i, "parent", desc.Parent.String())
				continue
			}
			if !graph.IsValid(node) {
				u.logger.Error("trimesh collider bound to invalid node, skipping",
					"collider", i, "parent", desc.Parent.String())
				continue
			}
			shape = MakeTrimesh(graph, node, u.logger)
		} else {
			shape = desc.Shape.Shape()
		}

		sh, ok := w.colliders.Insert(desc.Collider(shape), parent, &w.bodies)
		if !ok {
			u.logger.Error("collider insert failed, skipping", "collider", i)
			continue
		}
		w.colliderMap.Insert(ColliderHandle(colliderEngine[i]), sh)
	}

	for i := range u.desc.Joints {
		desc := &u.desc.Joints[i]
		b1, ok1 := w.bodyMap.ValueOf(desc.Body1)
		b2, ok2 := w.bodyMap.ValueOf(desc.Body2)
		if !ok1 || !ok2 {
			u.logger.Error("joint references unknown body, skipping",
				"joint", i, "body1", desc.Body1.String(), "body2", desc.Body2.String())
			continue
		}
		sh, ok := w.joints.Insert(&w.bodies, b1, b2, desc.Params.Params())
		if !ok {
			u.logger.Error("joint insert failed, skipping", "joint", i)
			continue
		}
		w.jointMap.Insert(JointHandle(jointEngine[i]), sh)
	}

	return w, nil
}

// engineByDense inverts a saved handle map into engine handles indexed
// by the dense array position the save used.
func engineByDense(entries []HandleMapEntry, n int, kind string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, n)
	seen := make([]bool, n)
	for _, e := range entries {
		i := int(e.Solver.Index)
		if i < 0 || i >= n {
			return nil, fmt.Errorf("physics: %s handle map entry %s points at index %d of %d", kind, e.Engine, i, n)
		}
		out[i] = e.Engine
		seen[i] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("physics: %s handle map has no entry for index %d", kind, i)
		}
	}
	return out, nil
}
