package physics

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/san-kum/scenephys/internal/solver"
	"github.com/san-kum/scenephys/internal/visit"
)

// DescVersion is the schema version written into every saved
// descriptor set. Reads reject any other version.
const DescVersion uint32 = 1

// Body status wire ids.
const (
	statusIDDynamic uint32 = iota
	statusIDStatic
	statusIDKinematic
)

func statusID(s solver.BodyStatus) uint32 {
	switch s {
	case solver.BodyStatusStatic:
		return statusIDStatic
	case solver.BodyStatusKinematic:
		return statusIDKinematic
	default:
		return statusIDDynamic
	}
}

func statusFromID(id uint32) (solver.BodyStatus, error) {
	switch id {
	case statusIDDynamic:
		return solver.BodyStatusDynamic, nil
	case statusIDStatic:
		return solver.BodyStatusStatic, nil
	case statusIDKinematic:
		return solver.BodyStatusKinematic, nil
	default:
		return 0, fmt.Errorf("physics: unknown body status id %d", id)
	}
}

func itemName(i int) string {
	return fmt.Sprintf("Item%d", i)
}

func visitUUID(vis *visit.Visitor, name string, id *uuid.UUID) error {
	raw := append([]byte(nil), id[:]...)
	if err := vis.Bytes(name, &raw); err != nil {
		return err
	}
	if vis.IsReading() {
		parsed, err := uuid.FromBytes(raw)
		if err != nil {
			return fmt.Errorf("physics: field %q is not a valid handle: %w", name, err)
		}
		*id = parsed
	}
	return nil
}

// descNode constrains visitSlice items to descriptor types.
type descNode[T any] interface {
	*T
	Visit(name string, vis *visit.Visitor) error
}

func visitSlice[T any, PT descNode[T]](vis *visit.Visitor, name string, items *[]T) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	count := uint32(len(*items))
	if err := vis.U32("Length", &count); err != nil {
		return err
	}
	if vis.IsReading() {
		*items = make([]T, count)
	}
	for i := range *items {
		if err := PT(&(*items)[i]).Visit(itemName(i), vis); err != nil {
			return err
		}
	}
	return vis.LeaveRegion()
}

// RigidBodyDesc mirrors one live body's defining state.
type RigidBodyDesc struct {
	Position          mgl32.Vec3
	Rotation          mgl32.Quat
	LinVel            mgl32.Vec3
	AngVel            mgl32.Vec3
	Sleeping          bool
	Status            uint32
	Colliders         []ColliderHandle
	Mass              float32
	XRotationLocked   bool
	YRotationLocked   bool
	ZRotationLocked   bool
	TranslationLocked bool
}

// RigidBodyDescFrom snapshots a live body. Attached collider handles
// are translated to the engine namespace through lookup.
func RigidBodyDescFrom(b *solver.RigidBody, lookup func(solver.Handle) (ColliderHandle, bool)) RigidBodyDesc {
	d := RigidBodyDesc{
		Position:          b.Position,
		Rotation:          b.Rotation,
		LinVel:            b.LinVel,
		AngVel:            b.AngVel,
		Sleeping:          b.IsSleeping(),
		Status:            statusID(b.Status),
		Mass:              b.Mass,
		XRotationLocked:   b.RotationLocked[0],
		YRotationLocked:   b.RotationLocked[1],
		ZRotationLocked:   b.RotationLocked[2],
		TranslationLocked: b.TranslationLocked,
	}
	for _, ch := range b.Colliders() {
		if engine, ok := lookup(ch); ok {
			d.Colliders = append(d.Colliders, engine)
		}
	}
	return d
}

// Body materializes the descriptor into a live body. The collider list
// is not applied here; colliders attach themselves on insert.
func (d *RigidBodyDesc) Body() (solver.RigidBody, error) {
	status, err := statusFromID(d.Status)
	if err != nil {
		return solver.RigidBody{}, err
	}
	b := solver.NewRigidBody(status)
	b.Position = d.Position
	b.Rotation = d.Rotation
	b.LinVel = d.LinVel
	b.AngVel = d.AngVel
	b.Mass = d.Mass
	b.RotationLocked = [3]bool{d.XRotationLocked, d.YRotationLocked, d.ZRotationLocked}
	b.TranslationLocked = d.TranslationLocked
	if d.Sleeping {
		b.Sleep()
	}
	return b, nil
}

func (d *RigidBodyDesc) Visit(name string, vis *visit.Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	if err := vis.Vec3("Position", &d.Position); err != nil {
		return err
	}
	if err := vis.Quat("Rotation", &d.Rotation); err != nil {
		return err
	}
	if err := vis.Vec3("LinVel", &d.LinVel); err != nil {
		return err
	}
	if err := vis.Vec3("AngVel", &d.AngVel); err != nil {
		return err
	}
	if err := vis.Bool("Sleeping", &d.Sleeping); err != nil {
		return err
	}
	if err := vis.U32("Status", &d.Status); err != nil {
		return err
	}
	if err := vis.EnterRegion("Colliders"); err != nil {
		return err
	}
	count := uint32(len(d.Colliders))
	if err := vis.U32("Length", &count); err != nil {
		return err
	}
	if vis.IsReading() {
		d.Colliders = make([]ColliderHandle, count)
	}
	for i := range d.Colliders {
		id := uuid.UUID(d.Colliders[i])
		if err := visitUUID(vis, itemName(i), &id); err != nil {
			return err
		}
		d.Colliders[i] = ColliderHandle(id)
	}
	if err := vis.LeaveRegion(); err != nil {
		return err
	}
	if err := vis.F32("Mass", &d.Mass); err != nil {
		return err
	}
	if err := vis.Bool("XRotationLocked", &d.XRotationLocked); err != nil {
		return err
	}
	if err := vis.Bool("YRotationLocked", &d.YRotationLocked); err != nil {
		return err
	}
	if err := vis.Bool("ZRotationLocked", &d.ZRotationLocked); err != nil {
		return err
	}
	if err := vis.Bool("TranslationLocked", &d.TranslationLocked); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

// ColliderDesc mirrors one live collider. Parent is the owning body's
// engine handle.
type ColliderDesc struct {
	Shape           ShapeDesc
	Parent          BodyHandle
	Friction        float32
	Restitution     float32
	IsSensor        bool
	Translation     mgl32.Vec3
	Rotation        mgl32.Quat
	CollisionGroups uint32
	SolverGroups    uint32
	Density         float32
}

// ColliderDescFrom snapshots a live collider. parent is the owning
// body's engine handle.
func ColliderDescFrom(c *solver.Collider, parent BodyHandle) ColliderDesc {
	return ColliderDesc{
		Shape:           ShapeDescFrom(c.Shape),
		Parent:          parent,
		Friction:        c.Friction,
		Restitution:     c.Restitution,
		IsSensor:        c.Sensor,
		Translation:     c.Translation,
		Rotation:        c.Rotation,
		CollisionGroups: uint32(c.CollisionGroups),
		SolverGroups:    uint32(c.SolverGroups),
		Density:         c.Density,
	}
}

// Collider materializes the descriptor with the given shape. The shape
// is passed in because trimesh geometry comes from the resolve
// pipeline, not from the descriptor.
func (d *ColliderDesc) Collider(shape solver.Shape) solver.Collider {
	c := solver.NewCollider(shape)
	c.Friction = d.Friction
	c.Restitution = d.Restitution
	c.Sensor = d.IsSensor
	c.Translation = d.Translation
	c.Rotation = d.Rotation
	c.CollisionGroups = solver.InteractionGroups(d.CollisionGroups)
	c.SolverGroups = solver.InteractionGroups(d.SolverGroups)
	c.Density = d.Density
	return c
}

func (d *ColliderDesc) Visit(name string, vis *visit.Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	if err := visitShape(vis, "Shape", &d.Shape); err != nil {
		return err
	}
	parent := uuid.UUID(d.Parent)
	if err := visitUUID(vis, "Parent", &parent); err != nil {
		return err
	}
	d.Parent = BodyHandle(parent)
	if err := vis.F32("Friction", &d.Friction); err != nil {
		return err
	}
	if err := vis.F32("Restitution", &d.Restitution); err != nil {
		return err
	}
	if err := vis.Bool("IsSensor", &d.IsSensor); err != nil {
		return err
	}
	if err := vis.Vec3("Translation", &d.Translation); err != nil {
		return err
	}
	if err := vis.Quat("Rotation", &d.Rotation); err != nil {
		return err
	}
	if err := vis.U32("CollisionGroups", &d.CollisionGroups); err != nil {
		return err
	}
	if err := vis.U32("SolverGroups", &d.SolverGroups); err != nil {
		return err
	}
	if err := vis.F32("Density", &d.Density); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

// JointDesc mirrors one live joint. Body1 and Body2 are engine handles
// remapped to live bodies at resolve time.
type JointDesc struct {
	Body1  BodyHandle
	Body2  BodyHandle
	Params JointParamsDesc
}

func JointDescFrom(j *solver.Joint, body1, body2 BodyHandle) JointDesc {
	return JointDesc{
		Body1:  body1,
		Body2:  body2,
		Params: JointParamsDescFrom(j.Params),
	}
}

func (d *JointDesc) Visit(name string, vis *visit.Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	b1 := uuid.UUID(d.Body1)
	if err := visitUUID(vis, "Body1", &b1); err != nil {
		return err
	}
	d.Body1 = BodyHandle(b1)
	b2 := uuid.UUID(d.Body2)
	if err := visitUUID(vis, "Body2", &b2); err != nil {
		return err
	}
	d.Body2 = BodyHandle(b2)
	if err := visitJointParams(vis, "Params", &d.Params); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

// IntegrationParametersDesc round-trips the solver configuration.
type IntegrationParametersDesc struct {
	DeltaTime                float32
	MinCcdDt                 float32
	Erp                      float32
	JointErp                 float32
	WarmstartCoeff           float32
	WarmstartCorrectionSlope float32
	VelocitySolveFraction    float32
	VelocityBasedErp         float32
	AllowedLinearError       float32
	PredictionDistance       float32
	AllowedAngularError      float32
	MaxLinearCorrection      float32
	MaxAngularCorrection     float32
	MaxVelocityIterations    uint32
	MaxPositionIterations    uint32
	MinIslandSize            uint32
	MaxCcdSubsteps           uint32
}

func IntegrationParametersDescFrom(p solver.IntegrationParameters) IntegrationParametersDesc {
	return IntegrationParametersDesc{
		DeltaTime:                p.Dt,
		MinCcdDt:                 p.MinCcdDt,
		Erp:                      p.Erp,
		JointErp:                 p.JointErp,
		WarmstartCoeff:           p.WarmstartCoeff,
		WarmstartCorrectionSlope: p.WarmstartCorrectionSlope,
		VelocitySolveFraction:    p.VelocitySolveFraction,
		VelocityBasedErp:         p.VelocityBasedErp,
		AllowedLinearError:       p.AllowedLinearError,
		PredictionDistance:       p.PredictionDistance,
		AllowedAngularError:      p.AllowedAngularError,
		MaxLinearCorrection:      p.MaxLinearCorrection,
		MaxAngularCorrection:     p.MaxAngularCorrection,
		MaxVelocityIterations:    p.MaxVelocityIterations,
		MaxPositionIterations:    p.MaxPositionIterations,
		MinIslandSize:            p.MinIslandSize,
		MaxCcdSubsteps:           p.MaxCcdSubsteps,
	}
}

// Params converts back to solver parameters. A zero MinIslandSize comes
// from saves made before the field existed and falls back to the
// solver default of 128.
func (d *IntegrationParametersDesc) Params() solver.IntegrationParameters {
	p := solver.IntegrationParameters{
		Dt:                       d.DeltaTime,
		MinCcdDt:                 d.MinCcdDt,
		Erp:                      d.Erp,
		JointErp:                 d.JointErp,
		WarmstartCoeff:           d.WarmstartCoeff,
		WarmstartCorrectionSlope: d.WarmstartCorrectionSlope,
		VelocitySolveFraction:    d.VelocitySolveFraction,
		VelocityBasedErp:         d.VelocityBasedErp,
		AllowedLinearError:       d.AllowedLinearError,
		PredictionDistance:       d.PredictionDistance,
		AllowedAngularError:      d.AllowedAngularError,
		MaxLinearCorrection:      d.MaxLinearCorrection,
		MaxAngularCorrection:     d.MaxAngularCorrection,
		MaxVelocityIterations:    d.MaxVelocityIterations,
		MaxPositionIterations:    d.MaxPositionIterations,
		MinIslandSize:            d.MinIslandSize,
		MaxCcdSubsteps:           d.MaxCcdSubsteps,
	}
	if p.MinIslandSize == 0 {
		p.MinIslandSize = 128
	}
	return p
}

func (d *IntegrationParametersDesc) Visit(name string, vis *visit.Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	fields := []struct {
		name string
		f32  *float32
		u32  *uint32
	}{
		{name: "DeltaTime", f32: &d.DeltaTime},
		{name: "MinCcdDt", f32: &d.MinCcdDt},
		{name: "Erp", f32: &d.Erp},
		{name: "JointErp", f32: &d.JointErp},
		{name: "WarmstartCoeff", f32: &d.WarmstartCoeff},
		{name: "WarmstartCorrectionSlope", f32: &d.WarmstartCorrectionSlope},
		{name: "VelocitySolveFraction", f32: &d.VelocitySolveFraction},
		{name: "VelocityBasedErp", f32: &d.VelocityBasedErp},
		{name: "AllowedLinearError", f32: &d.AllowedLinearError},
		{name: "PredictionDistance", f32: &d.PredictionDistance},
		{name: "AllowedAngularError", f32: &d.AllowedAngularError},
		{name: "MaxLinearCorrection", f32: &d.MaxLinearCorrection},
		{name: "MaxAngularCorrection", f32: &d.MaxAngularCorrection},
		{name: "MaxVelocityIterations", u32: &d.MaxVelocityIterations},
		{name: "MaxPositionIterations", u32: &d.MaxPositionIterations},
		{name: "MinIslandSize", u32: &d.MinIslandSize},
		{name: "MaxCcdSubsteps", u32: &d.MaxCcdSubsteps},
	}
	for _, f := range fields {
		var err error
		if f.f32 != nil {
			err = vis.F32(f.name, f.f32)
		} else {
			err = vis.U32(f.name, f.u32)
		}
		if err != nil {
			return err
		}
	}
	return vis.LeaveRegion()
}

// HandleMapEntry records one engine-handle to solver-handle pair. In a
// saved descriptor set the solver handles are dense: the entry for the
// i-th array element is {i, 0}.
type HandleMapEntry struct {
	Engine uuid.UUID
	Solver solver.Handle
}

func visitHandleMap(vis *visit.Visitor, name string, entries *[]HandleMapEntry) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	count := uint32(len(*entries))
	if err := vis.U32("Length", &count); err != nil {
		return err
	}
	if vis.IsReading() {
		*entries = make([]HandleMapEntry, count)
	}
	for i := range *entries {
		e := &(*entries)[i]
		if err := vis.EnterRegion(itemName(i)); err != nil {
			return err
		}
		if err := visitUUID(vis, "Handle", &e.Engine); err != nil {
			return err
		}
		if err := vis.U32("Index", &e.Solver.Index); err != nil {
			return err
		}
		if err := vis.U32("Generation", &e.Solver.Generation); err != nil {
			return err
		}
		if err := vis.LeaveRegion(); err != nil {
			return err
		}
	}
	return vis.LeaveRegion()
}

// sequentialHandle derives the deterministic engine handle older saves
// without handle maps implied for the i-th element of an array. kind
// keeps the body, collider and joint namespaces apart.
func sequentialHandle(kind byte, i int) uuid.UUID {
	var id uuid.UUID
	id[0] = kind
	binary.BigEndian.PutUint64(id[8:], uint64(i)+1)
	return id
}

const (
	handleKindBody     byte = 1
	handleKindCollider byte = 2
	handleKindJoint    byte = 3
)

func sequentialHandleMap(kind byte, n int) []HandleMapEntry {
	entries := make([]HandleMapEntry, n)
	for i := range entries {
		entries[i] = HandleMapEntry{
			Engine: sequentialHandle(kind, i),
			Solver: solver.Handle{Index: uint32(i)},
		}
	}
	return entries
}

// PhysicsDesc is the complete serializable snapshot of a world. It is
// the only form ever persisted.
type PhysicsDesc struct {
	IntegrationParameters IntegrationParametersDesc
	Gravity               mgl32.Vec3
	Bodies                []RigidBodyDesc
	Colliders             []ColliderDesc
	Joints                []JointDesc
	BodyHandleMap         []HandleMapEntry
	ColliderHandleMap     []HandleMapEntry
	JointHandleMap        []HandleMapEntry
}

func (d *PhysicsDesc) Visit(name string, vis *visit.Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	version := DescVersion
	if err := vis.U32("Version", &version); err != nil {
		return err
	}
	if vis.IsReading() && version != DescVersion {
		return fmt.Errorf("physics: unsupported descriptor version %d, expected %d", version, DescVersion)
	}
	if err := d.IntegrationParameters.Visit("IntegrationParameters", vis); err != nil {
		return err
	}
	if err := vis.Vec3("Gravity", &d.Gravity); err != nil {
		return err
	}
	if err := visitSlice[RigidBodyDesc](vis, "Bodies", &d.Bodies); err != nil {
		return err
	}
	if err := visitSlice[ColliderDesc](vis, "Colliders", &d.Colliders); err != nil {
		return err
	}
	if err := visitSlice[JointDesc](vis, "Joints", &d.Joints); err != nil {
		return err
	}
	if err := d.visitHandleMaps(vis); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

// visitHandleMaps reads or writes the three translation-table
// snapshots. Saves predating the maps lack the regions entirely; on
// read that synthesizes sequential handles from array position, the
// same scheme those saves used for cross references.
func (d *PhysicsDesc) visitHandleMaps(vis *visit.Visitor) error {
	type table struct {
		name    string
		entries *[]HandleMapEntry
		kind    byte
		n       int
	}
	tables := []table{
		{"BodyHandleMap", &d.BodyHandleMap, handleKindBody, len(d.Bodies)},
		{"ColliderHandleMap", &d.ColliderHandleMap, handleKindCollider, len(d.Colliders)},
		{"JointHandleMap", &d.JointHandleMap, handleKindJoint, len(d.Joints)},
	}
	for _, t := range tables {
		if !vis.IsReading() && *t.entries == nil {
			continue
		}
		err := visitHandleMap(vis, t.name, t.entries)
		if err != nil {
			if vis.IsReading() && errors.Is(err, visit.ErrRegionNotFound) {
				*t.entries = sequentialHandleMap(t.kind, t.n)
				continue
			}
			return err
		}
	}
	return nil
}

// Save writes the descriptor set to w in the visit binary format.
func (d *PhysicsDesc) Save(w io.Writer) error {
	vis := visit.NewWriter()
	if err := d.Visit("Physics", vis); err != nil {
		return err
	}
	return vis.Save(w)
}

// LoadDesc reads a descriptor set written by Save.
func LoadDesc(r io.Reader) (*PhysicsDesc, error) {
	vis, err := visit.Load(r)
	if err != nil {
		return nil, err
	}
	var d PhysicsDesc
	if err := d.Visit("Physics", vis); err != nil {
		return nil, err
	}
	return &d, nil
}
