// Package physics is the integration layer between the engine's scene
// model and the rigid-body solver. It owns the live physics world, the
// stable engine-handle namespace, the serializable descriptor set and
// the resolve/embed pipeline that rebuilds solver state after a load or
// a resource instantiation.
package physics

import "github.com/google/uuid"

// BodyHandle is the stable engine-side identifier of a rigid body. It
// is minted fresh on every add and never reused, so it is safe to
// persist, unlike the solver's own handles.
type BodyHandle uuid.UUID

// ColliderHandle is the stable engine-side identifier of a collider.
type ColliderHandle uuid.UUID

// JointHandle is the stable engine-side identifier of a joint.
type JointHandle uuid.UUID

func NewBodyHandle() BodyHandle         { return BodyHandle(uuid.New()) }
func NewColliderHandle() ColliderHandle { return ColliderHandle(uuid.New()) }
func NewJointHandle() JointHandle       { return JointHandle(uuid.New()) }

func (h BodyHandle) String() string     { return uuid.UUID(h).String() }
func (h ColliderHandle) String() string { return uuid.UUID(h).String() }
func (h JointHandle) String() string    { return uuid.UUID(h).String() }

func (h BodyHandle) IsZero() bool     { return h == BodyHandle{} }
func (h ColliderHandle) IsZero() bool { return h == ColliderHandle{} }
func (h JointHandle) IsZero() bool    { return h == JointHandle{} }
