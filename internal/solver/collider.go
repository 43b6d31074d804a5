package solver

import "github.com/go-gl/mathgl/mgl32"

// InteractionGroups packs 16 membership bits and 16 filter bits. Two
// colliders (or a ray and a collider) interact when each one's
// memberships overlap the other's filter.
type InteractionGroups uint32

// DefaultInteractionGroups is a member of every group and filters none out.
const DefaultInteractionGroups InteractionGroups = 0xffffffff

func (g InteractionGroups) memberships() uint16 { return uint16(g >> 16) }
func (g InteractionGroups) filter() uint16      { return uint16(g) }

// Test reports whether the two groups interact.
func (g InteractionGroups) Test(other InteractionGroups) bool {
	return g.memberships()&other.filter() != 0 && other.memberships()&g.filter() != 0
}

// Collider is live collision geometry attached to a body.
type Collider struct {
	Shape       Shape
	Friction    float32
	Restitution float32
	// Density of zero means the collider contributes no mass of its own.
	Density float32
	Sensor  bool

	// Transform of the collider with respect to its parent body.
	Translation mgl32.Vec3
	Rotation    mgl32.Quat

	CollisionGroups InteractionGroups
	SolverGroups    InteractionGroups

	parent Handle
}

// NewCollider returns a collider with the defaults the engine assumes:
// moderate friction, no restitution, member of all interaction groups.
func NewCollider(shape Shape) Collider {
	return Collider{
		Shape:           shape,
		Friction:        0.5,
		Rotation:        mgl32.QuatIdent(),
		CollisionGroups: DefaultInteractionGroups,
		SolverGroups:    DefaultInteractionGroups,
	}
}

// Parent returns the owning body's handle.
func (c *Collider) Parent() Handle { return c.parent }

// ColliderSet stores the live colliders.
type ColliderSet struct {
	arena Arena[Collider]
}

// Insert attaches c to parent and stores it. It fails when parent is
// stale.
func (s *ColliderSet) Insert(c Collider, parent Handle, bodies *BodySet) (Handle, bool) {
	body := bodies.Get(parent)
	if body == nil {
		return Handle{}, false
	}
	c.parent = parent
	h := s.arena.Insert(c)
	body.attach(h)
	return h, true
}

// Get returns the collider at h, nil if h is stale.
func (s *ColliderSet) Get(h Handle) *Collider {
	return s.arena.Get(h)
}

func (s *ColliderSet) Len() int          { return s.arena.Len() }
func (s *ColliderSet) Handles() []Handle { return s.arena.Handles() }

// Remove frees the collider and detaches it from its parent body.
func (s *ColliderSet) Remove(h Handle, bodies *BodySet) (*Collider, bool) {
	c := s.arena.Get(h)
	if c == nil {
		return nil, false
	}
	if body := bodies.Get(c.parent); body != nil {
		body.detach(h)
	}
	removed, _ := s.arena.Remove(h)
	return &removed, true
}

// WorldTransform composes the parent body's pose with the collider's
// local transform.
func (c *Collider) WorldTransform(body *RigidBody) (mgl32.Vec3, mgl32.Quat) {
	pos := body.Position.Add(body.Rotation.Rotate(c.Translation))
	rot := body.Rotation.Mul(c.Rotation)
	return pos, rot
}
