package physics

import (
	"log/slog"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/san-kum/scenephys/internal/bimap"
	"github.com/san-kum/scenephys/internal/solver"
)

// PerformanceStatistics accumulates wall time spent inside the world.
// Plain counters with explicit reset; the owner samples and resets them
// once per reporting interval.
type PerformanceStatistics struct {
	StepTime         time.Duration
	TotalRayCastTime time.Duration
}

func (s *PerformanceStatistics) Reset() {
	s.StepTime = 0
	s.TotalRayCastTime = 0
}

// Intersection is one engine-facing ray hit.
type Intersection struct {
	Collider ColliderHandle
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Feature  solver.FeatureID
	// TOI is the distance along the ray to the hit point.
	TOI float32
}

// QueryResultsStorage is the sink ray casts write into. Push reports
// whether the cast should keep going, so a full fixed-capacity sink
// stops the traversal early.
type QueryResultsStorage interface {
	Push(Intersection) bool
	Clear()
	Sort()
}

// SliceStorage is a growable query sink.
type SliceStorage struct {
	Hits []Intersection
}

func (s *SliceStorage) Push(i Intersection) bool {
	s.Hits = append(s.Hits, i)
	return true
}

func (s *SliceStorage) Clear() { s.Hits = s.Hits[:0] }

func (s *SliceStorage) Sort() {
	sort.Slice(s.Hits, func(i, j int) bool { return s.Hits[i].TOI < s.Hits[j].TOI })
}

// FixedStorage is a query sink with a fixed capacity for hot paths
// that must not allocate. Pushes past capacity are counted, not fatal.
type FixedStorage struct {
	hits    []Intersection
	dropped int
}

func NewFixedStorage(capacity int) *FixedStorage {
	return &FixedStorage{hits: make([]Intersection, 0, capacity)}
}

func (s *FixedStorage) Push(i Intersection) bool {
	if len(s.hits) == cap(s.hits) {
		s.dropped++
		return false
	}
	s.hits = append(s.hits, i)
	return true
}

func (s *FixedStorage) Clear() {
	s.hits = s.hits[:0]
	s.dropped = 0
}

func (s *FixedStorage) Sort() {
	sort.Slice(s.hits, func(i, j int) bool { return s.hits[i].TOI < s.hits[j].TOI })
}

func (s *FixedStorage) Hits() []Intersection { return s.hits }

// Dropped reports how many intersections did not fit.
func (s *FixedStorage) Dropped() int { return s.dropped }

// RayCastOptions parameterize one cast.
type RayCastOptions struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	// MaxLen bounds the hit distance along the ray.
	MaxLen float32
	Groups solver.InteractionGroups
	// SortResults orders hits by ascending distance.
	SortResults bool
}

// World owns the live solver state and the translation tables that tie
// solver entities to stable engine handles. It is single threaded by
// construction: only the owning scene's update cycle mutates it.
type World struct {
	bodies    solver.BodySet
	colliders solver.ColliderSet
	joints    solver.JointSet
	pipeline  solver.Pipeline
	query     solver.QueryPipeline

	Gravity               mgl32.Vec3
	IntegrationParameters solver.IntegrationParameters

	bodyMap     *bimap.Map[BodyHandle, solver.Handle]
	colliderMap *bimap.Map[ColliderHandle, solver.Handle]
	jointMap    *bimap.Map[JointHandle, solver.Handle]

	// descOverride, when set, is written on save instead of a snapshot
	// of the live state. Editors use it for hand-authored edits.
	descOverride *PhysicsDesc

	links  []ResourceLink
	stats  PerformanceStatistics
	logger *slog.Logger
}

// NewWorld returns an empty world with standard gravity and the solver
// default integration parameters.
func NewWorld() *World {
	return &World{
		Gravity:               mgl32.Vec3{0, -9.81, 0},
		IntegrationParameters: solver.DefaultIntegrationParameters(),
		bodyMap:               bimap.New[BodyHandle, solver.Handle](),
		colliderMap:           bimap.New[ColliderHandle, solver.Handle](),
		jointMap:              bimap.New[JointHandle, solver.Handle](),
		logger:                slog.Default(),
	}
}

// SetLogger redirects the world's log output.
func (w *World) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// AddBody inserts body into the solver and returns its fresh engine
// handle.
func (w *World) AddBody(body solver.RigidBody) BodyHandle {
	h := NewBodyHandle()
	w.bodyMap.Insert(h, w.bodies.Insert(body))
	return h
}

// RemoveBody removes the body, cascading to its colliders and every
// joint with an endpoint on it, and purges all affected translation
// table entries. A stale or unknown handle returns false.
func (w *World) RemoveBody(h BodyHandle) bool {
	sh, ok := w.bodyMap.ValueOf(h)
	if !ok {
		return false
	}
	body, removedColliders, removedJoints := w.bodies.Remove(sh, &w.colliders, &w.joints)
	if body == nil {
		return false
	}
	w.bodyMap.RemoveByKey(h)
	for _, ch := range removedColliders {
		w.colliderMap.RemoveByValue(ch)
	}
	for _, jh := range removedJoints {
		w.jointMap.RemoveByValue(jh)
	}
	return true
}

// Body returns the live body for h, nil when the handle is unknown.
func (w *World) Body(h BodyHandle) *solver.RigidBody {
	sh, ok := w.bodyMap.ValueOf(h)
	if !ok {
		return nil
	}
	return w.bodies.Get(sh)
}

func (w *World) ContainsBody(h BodyHandle) bool {
	return w.Body(h) != nil
}

// AddCollider attaches collider to the body at parent. It fails when
// parent is unknown.
func (w *World) AddCollider(collider solver.Collider, parent BodyHandle) (ColliderHandle, bool) {
	sh, ok := w.bodyMap.ValueOf(parent)
	if !ok {
		return ColliderHandle{}, false
	}
	ch, ok := w.colliders.Insert(collider, sh, &w.bodies)
	if !ok {
		return ColliderHandle{}, false
	}
	h := NewColliderHandle()
	w.colliderMap.Insert(h, ch)
	return h, true
}

// RemoveCollider removes the collider and its translation table entry.
func (w *World) RemoveCollider(h ColliderHandle) bool {
	sh, ok := w.colliderMap.ValueOf(h)
	if !ok {
		return false
	}
	if _, ok := w.colliders.Remove(sh, &w.bodies); !ok {
		return false
	}
	w.colliderMap.RemoveByKey(h)
	return true
}

// Collider returns the live collider for h, nil when unknown.
func (w *World) Collider(h ColliderHandle) *solver.Collider {
	sh, ok := w.colliderMap.ValueOf(h)
	if !ok {
		return nil
	}
	return w.colliders.Get(sh)
}

func (w *World) ContainsCollider(h ColliderHandle) bool {
	return w.Collider(h) != nil
}

// ColliderParent returns the engine handle of the collider's owning
// body.
func (w *World) ColliderParent(h ColliderHandle) (BodyHandle, bool) {
	c := w.Collider(h)
	if c == nil {
		return BodyHandle{}, false
	}
	return w.bodyMap.KeyOf(c.Parent())
}

// AddJoint constrains the two bodies. It fails when either endpoint is
// unknown.
func (w *World) AddJoint(body1, body2 BodyHandle, params solver.JointParams) (JointHandle, bool) {
	s1, ok := w.bodyMap.ValueOf(body1)
	if !ok {
		return JointHandle{}, false
	}
	s2, ok := w.bodyMap.ValueOf(body2)
	if !ok {
		return JointHandle{}, false
	}
	jh, ok := w.joints.Insert(&w.bodies, s1, s2, params)
	if !ok {
		return JointHandle{}, false
	}
	h := NewJointHandle()
	w.jointMap.Insert(h, jh)
	return h, true
}

// RemoveJoint removes the joint and its translation table entry.
func (w *World) RemoveJoint(h JointHandle) bool {
	sh, ok := w.jointMap.ValueOf(h)
	if !ok {
		return false
	}
	if _, ok := w.joints.Remove(sh); !ok {
		return false
	}
	w.jointMap.RemoveByKey(h)
	return true
}

// Joint returns the live joint for h, nil when unknown.
func (w *World) Joint(h JointHandle) *solver.Joint {
	sh, ok := w.jointMap.ValueOf(h)
	if !ok {
		return nil
	}
	return w.joints.Get(sh)
}

func (w *World) BodyCount() int     { return w.bodies.Len() }
func (w *World) ColliderCount() int { return w.colliders.Len() }
func (w *World) JointCount() int    { return w.joints.Len() }

// BodyHandles returns the engine handles of all live bodies in solver
// iteration order.
func (w *World) BodyHandles() []BodyHandle {
	out := make([]BodyHandle, 0, w.bodies.Len())
	for _, sh := range w.bodies.Handles() {
		if h, ok := w.bodyMap.KeyOf(sh); ok {
			out = append(out, h)
		}
	}
	return out
}

// Statistics exposes the performance accumulators.
func (w *World) Statistics() *PerformanceStatistics {
	return &w.stats
}

// ResourceLinks returns the records of embedded resources.
func (w *World) ResourceLinks() []ResourceLink {
	return w.links
}

// Step advances the simulation by one fixed tick and accumulates the
// elapsed wall time.
func (w *World) Step() {
	start := time.Now()
	w.pipeline.Step(w.Gravity, &w.IntegrationParameters, &w.bodies, &w.colliders, &w.joints)
	w.stats.StepTime += time.Since(start)
}

// CastRay finds every collider intersection along the ray and writes
// engine-facing results into storage. The spatial snapshot is rebuilt
// on every call: entities may have been removed since the last cast
// and a stale snapshot could reference freed slots.
func (w *World) CastRay(opts RayCastOptions, storage QueryResultsStorage) {
	start := time.Now()
	defer func() { w.stats.TotalRayCastTime += time.Since(start) }()

	storage.Clear()
	dir := opts.Direction
	if dir.Len() == 0 || opts.MaxLen <= 0 {
		return
	}
	ray := solver.Ray{Origin: opts.Origin, Dir: dir.Normalize()}
	groups := opts.Groups
	if groups == 0 {
		groups = solver.DefaultInteractionGroups
	}

	w.query.Update(&w.bodies, &w.colliders)
	w.query.IntersectionsWithRay(&w.bodies, &w.colliders, ray, opts.MaxLen, groups,
		func(sh solver.Handle, hit solver.RayIntersection) bool {
			engine, ok := w.colliderMap.KeyOf(sh)
			if !ok {
				return true
			}
			return storage.Push(Intersection{
				Collider: engine,
				Position: ray.PointAt(hit.TOI),
				Normal:   hit.Normal,
				Feature:  hit.Feature,
				TOI:      hit.TOI,
			})
		})

	if opts.SortResults {
		storage.Sort()
	}
}

// GenerateDesc snapshots the live world into a descriptor set. Solver
// handles are remapped to a dense 0..N numbering in iteration order so
// two successive saves without structural changes number identically,
// regardless of internal slot reuse.
func (w *World) GenerateDesc() PhysicsDesc {
	bodyHandles := w.bodies.Handles()
	colliderHandles := w.colliders.Handles()
	jointHandles := w.joints.Handles()

	denseColliders := make(map[solver.Handle]solver.Handle, len(colliderHandles))
	for i, h := range colliderHandles {
		denseColliders[h] = solver.Handle{Index: uint32(i)}
	}

	desc := PhysicsDesc{
		IntegrationParameters: IntegrationParametersDescFrom(w.IntegrationParameters),
		Gravity:               w.Gravity,
		Bodies:                make([]RigidBodyDesc, 0, len(bodyHandles)),
		Colliders:             make([]ColliderDesc, 0, len(colliderHandles)),
		Joints:                make([]JointDesc, 0, len(jointHandles)),
		BodyHandleMap:         make([]HandleMapEntry, 0, len(bodyHandles)),
		ColliderHandleMap:     make([]HandleMapEntry, 0, len(colliderHandles)),
		JointHandleMap:        make([]HandleMapEntry, 0, len(jointHandles)),
	}

	for i, sh := range bodyHandles {
		body := w.bodies.Get(sh)
		desc.Bodies = append(desc.Bodies, RigidBodyDescFrom(body, w.colliderMap.KeyOf))
		if engine, ok := w.bodyMap.KeyOf(sh); ok {
			desc.BodyHandleMap = append(desc.BodyHandleMap, HandleMapEntry{
				Engine: uuid.UUID(engine),
				Solver: solver.Handle{Index: uint32(i)},
			})
		}
	}
	for _, sh := range colliderHandles {
		c := w.colliders.Get(sh)
		parent, _ := w.bodyMap.KeyOf(c.Parent())
		desc.Colliders = append(desc.Colliders, ColliderDescFrom(c, parent))
		if engine, ok := w.colliderMap.KeyOf(sh); ok {
			desc.ColliderHandleMap = append(desc.ColliderHandleMap, HandleMapEntry{
				Engine: uuid.UUID(engine),
				Solver: denseColliders[sh],
			})
		}
	}
	for i, sh := range jointHandles {
		j := w.joints.Get(sh)
		b1, _ := w.bodyMap.KeyOf(j.Body1)
		b2, _ := w.bodyMap.KeyOf(j.Body2)
		desc.Joints = append(desc.Joints, JointDescFrom(j, b1, b2))
		if engine, ok := w.jointMap.KeyOf(sh); ok {
			desc.JointHandleMap = append(desc.JointHandleMap, HandleMapEntry{
				Engine: uuid.UUID(engine),
				Solver: solver.Handle{Index: uint32(i)},
			})
		}
	}
	return desc
}

// SetDescOverride pins the descriptor set Desc returns, bypassing live
// state on the next save. Pass nil to clear.
func (w *World) SetDescOverride(desc *PhysicsDesc) {
	w.descOverride = desc
}

// Desc returns the override when one is pinned, otherwise a fresh
// snapshot of the live state.
func (w *World) Desc() PhysicsDesc {
	if w.descOverride != nil {
		return *w.descOverride
	}
	return w.GenerateDesc()
}

// DeepCopy reproduces the world through a snapshot and resolve round
// trip, the same path the editor's duplicate-scene command takes.
func (w *World) DeepCopy(binder *Binder, graph SceneGraph) (*World, error) {
	desc := w.GenerateDesc()
	unresolved := NewUnresolved(desc)
	unresolved.SetLogger(w.logger)
	return unresolved.Resolve(binder, graph)
}
