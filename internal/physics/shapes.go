package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/solver"
	"github.com/san-kum/scenephys/internal/visit"
)

// ShapeDesc is the serializable form of a collider shape. Each variant
// carries a stable small-integer id on the wire; an unknown id on read
// is a hard error, never a silent default.
type ShapeDesc interface {
	// ID is the wire discriminant of the variant.
	ID() uint32
	// Shape converts the descriptor into live solver geometry. Trimesh
	// and heightfield descriptors carry no bulk data; they return a
	// degenerate placeholder and expect the resolve pipeline to rebuild
	// the real geometry from the bound scene node.
	Shape() solver.Shape
	visitFields(vis *visit.Visitor) error
}

// Wire ids of the shape variants. The table below is the only place
// the id-to-variant mapping lives; read and write paths both go
// through it.
const (
	shapeIDBall uint32 = iota
	shapeIDCylinder
	shapeIDRoundCylinder
	shapeIDCone
	shapeIDCuboid
	shapeIDCapsule
	shapeIDSegment
	shapeIDTriangle
	shapeIDTrimesh
	shapeIDHeightfield
)

func shapeDescFromID(id uint32) (ShapeDesc, error) {
	switch id {
	case shapeIDBall:
		return &BallDesc{}, nil
	case shapeIDCylinder:
		return &CylinderDesc{}, nil
	case shapeIDRoundCylinder:
		return &RoundCylinderDesc{}, nil
	case shapeIDCone:
		return &ConeDesc{}, nil
	case shapeIDCuboid:
		return &CuboidDesc{}, nil
	case shapeIDCapsule:
		return &CapsuleDesc{}, nil
	case shapeIDSegment:
		return &SegmentDesc{}, nil
	case shapeIDTriangle:
		return &TriangleDesc{}, nil
	case shapeIDTrimesh:
		return &TrimeshDesc{}, nil
	case shapeIDHeightfield:
		return &HeightfieldDesc{}, nil
	default:
		return nil, fmt.Errorf("physics: unknown shape id %d", id)
	}
}

// ShapeDescFrom snapshots live solver geometry into its descriptor.
// Trimesh and heightfield collapse to data-free placeholders because
// their geometry is a derived cache, rebuilt on load.
func ShapeDescFrom(s solver.Shape) ShapeDesc {
	switch v := s.(type) {
	case solver.Ball:
		return &BallDesc{Radius: v.Radius}
	case solver.Cylinder:
		return &CylinderDesc{HalfHeight: v.HalfHeight, Radius: v.Radius}
	case solver.RoundCylinder:
		return &RoundCylinderDesc{HalfHeight: v.HalfHeight, Radius: v.Radius, BorderRadius: v.BorderRadius}
	case solver.Cone:
		return &ConeDesc{HalfHeight: v.HalfHeight, Radius: v.Radius}
	case solver.Cuboid:
		return &CuboidDesc{HalfExtents: v.HalfExtents}
	case solver.Capsule:
		return &CapsuleDesc{Begin: v.Begin, End: v.End, Radius: v.Radius}
	case solver.Segment:
		return &SegmentDesc{Begin: v.Begin, End: v.End}
	case solver.Triangle:
		return &TriangleDesc{A: v.A, B: v.B, C: v.C}
	case *solver.TriMesh:
		return &TrimeshDesc{}
	case solver.Heightfield:
		return &HeightfieldDesc{}
	default:
		panic(fmt.Sprintf("physics: unhandled shape type %T", s))
	}
}

// visitShape writes or reads one tagged shape descriptor.
func visitShape(vis *visit.Visitor, name string, shape *ShapeDesc) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	var id uint32
	if !vis.IsReading() {
		id = (*shape).ID()
	}
	if err := vis.U32("Id", &id); err != nil {
		return err
	}
	if vis.IsReading() {
		s, err := shapeDescFromID(id)
		if err != nil {
			return err
		}
		*shape = s
	}
	if err := (*shape).visitFields(vis); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

type BallDesc struct {
	Radius float32
}

func (d *BallDesc) ID() uint32          { return shapeIDBall }
func (d *BallDesc) Shape() solver.Shape { return solver.Ball{Radius: d.Radius} }
func (d *BallDesc) visitFields(vis *visit.Visitor) error {
	return vis.F32("Radius", &d.Radius)
}

type CylinderDesc struct {
	HalfHeight float32
	Radius     float32
}

func (d *CylinderDesc) ID() uint32 { return shapeIDCylinder }
func (d *CylinderDesc) Shape() solver.Shape {
	return solver.Cylinder{HalfHeight: d.HalfHeight, Radius: d.Radius}
}
func (d *CylinderDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.F32("HalfHeight", &d.HalfHeight); err != nil {
		return err
	}
	return vis.F32("Radius", &d.Radius)
}

type RoundCylinderDesc struct {
	HalfHeight   float32
	Radius       float32
	BorderRadius float32
}

func (d *RoundCylinderDesc) ID() uint32 { return shapeIDRoundCylinder }
func (d *RoundCylinderDesc) Shape() solver.Shape {
	return solver.RoundCylinder{HalfHeight: d.HalfHeight, Radius: d.Radius, BorderRadius: d.BorderRadius}
}
func (d *RoundCylinderDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.F32("HalfHeight", &d.HalfHeight); err != nil {
		return err
	}
	if err := vis.F32("Radius", &d.Radius); err != nil {
		return err
	}
	return vis.F32("BorderRadius", &d.BorderRadius)
}

type ConeDesc struct {
	HalfHeight float32
	Radius     float32
}

func (d *ConeDesc) ID() uint32 { return shapeIDCone }
func (d *ConeDesc) Shape() solver.Shape {
	return solver.Cone{HalfHeight: d.HalfHeight, Radius: d.Radius}
}
func (d *ConeDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.F32("HalfHeight", &d.HalfHeight); err != nil {
		return err
	}
	return vis.F32("Radius", &d.Radius)
}

type CuboidDesc struct {
	HalfExtents mgl32.Vec3
}

func (d *CuboidDesc) ID() uint32          { return shapeIDCuboid }
func (d *CuboidDesc) Shape() solver.Shape { return solver.Cuboid{HalfExtents: d.HalfExtents} }
func (d *CuboidDesc) visitFields(vis *visit.Visitor) error {
	return vis.Vec3("HalfExtents", &d.HalfExtents)
}

type CapsuleDesc struct {
	Begin  mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
}

func (d *CapsuleDesc) ID() uint32 { return shapeIDCapsule }
func (d *CapsuleDesc) Shape() solver.Shape {
	return solver.Capsule{Begin: d.Begin, End: d.End, Radius: d.Radius}
}
func (d *CapsuleDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("Begin", &d.Begin); err != nil {
		return err
	}
	if err := vis.Vec3("End", &d.End); err != nil {
		return err
	}
	return vis.F32("Radius", &d.Radius)
}

type SegmentDesc struct {
	Begin mgl32.Vec3
	End   mgl32.Vec3
}

func (d *SegmentDesc) ID() uint32          { return shapeIDSegment }
func (d *SegmentDesc) Shape() solver.Shape { return solver.Segment{Begin: d.Begin, End: d.End} }
func (d *SegmentDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("Begin", &d.Begin); err != nil {
		return err
	}
	return vis.Vec3("End", &d.End)
}

type TriangleDesc struct {
	A mgl32.Vec3
	B mgl32.Vec3
	C mgl32.Vec3
}

func (d *TriangleDesc) ID() uint32          { return shapeIDTriangle }
func (d *TriangleDesc) Shape() solver.Shape { return solver.Triangle{A: d.A, B: d.B, C: d.C} }
func (d *TriangleDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("A", &d.A); err != nil {
		return err
	}
	if err := vis.Vec3("B", &d.B); err != nil {
		return err
	}
	return vis.Vec3("C", &d.C)
}

// TrimeshDesc is a marker: the triangle data lives in the bound mesh
// node and is regenerated on resolve, never persisted.
type TrimeshDesc struct{}

func (d *TrimeshDesc) ID() uint32 { return shapeIDTrimesh }
func (d *TrimeshDesc) Shape() solver.Shape {
	return solver.NewTriMesh(
		[]mgl32.Vec3{{0, 0, 0}},
		[][3]uint32{{0, 0, 0}},
	)
}
func (d *TrimeshDesc) visitFields(vis *visit.Visitor) error { return nil }

// HeightfieldDesc is a marker like TrimeshDesc: heights come from the
// bound terrain data, not from the save.
type HeightfieldDesc struct{}

func (d *HeightfieldDesc) ID() uint32 { return shapeIDHeightfield }
func (d *HeightfieldDesc) Shape() solver.Shape {
	return solver.Heightfield{
		Heights: [][]float32{{0, 0}, {0, 0}},
		Scale:   mgl32.Vec3{1, 1, 1},
	}
}
func (d *HeightfieldDesc) visitFields(vis *visit.Visitor) error { return nil }

// JointParamsDesc is the serializable form of joint constraint
// parameters, tagged the same way shapes are.
type JointParamsDesc interface {
	ID() uint32
	Params() solver.JointParams
	visitFields(vis *visit.Visitor) error
}

const (
	jointIDBall uint32 = iota
	jointIDFixed
	jointIDPrismatic
	jointIDRevolute
)

func jointParamsDescFromID(id uint32) (JointParamsDesc, error) {
	switch id {
	case jointIDBall:
		return &BallJointDesc{}, nil
	case jointIDFixed:
		return &FixedJointDesc{}, nil
	case jointIDPrismatic:
		return &PrismaticJointDesc{}, nil
	case jointIDRevolute:
		return &RevoluteJointDesc{}, nil
	default:
		return nil, fmt.Errorf("physics: unknown joint id %d", id)
	}
}

// JointParamsDescFrom snapshots live joint parameters.
func JointParamsDescFrom(p solver.JointParams) JointParamsDesc {
	switch v := p.(type) {
	case solver.BallJoint:
		return &BallJointDesc{LocalAnchor1: v.LocalAnchor1, LocalAnchor2: v.LocalAnchor2}
	case solver.FixedJoint:
		return &FixedJointDesc{
			LocalAnchor1Translation: v.LocalAnchor1Translation,
			LocalAnchor1Rotation:    v.LocalAnchor1Rotation,
			LocalAnchor2Translation: v.LocalAnchor2Translation,
			LocalAnchor2Rotation:    v.LocalAnchor2Rotation,
		}
	case solver.PrismaticJoint:
		return &PrismaticJointDesc{
			LocalAnchor1: v.LocalAnchor1, LocalAxis1: v.LocalAxis1,
			LocalAnchor2: v.LocalAnchor2, LocalAxis2: v.LocalAxis2,
		}
	case solver.RevoluteJoint:
		return &RevoluteJointDesc{
			LocalAnchor1: v.LocalAnchor1, LocalAxis1: v.LocalAxis1,
			LocalAnchor2: v.LocalAnchor2, LocalAxis2: v.LocalAxis2,
		}
	default:
		panic(fmt.Sprintf("physics: unhandled joint params type %T", p))
	}
}

func visitJointParams(vis *visit.Visitor, name string, params *JointParamsDesc) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	var id uint32
	if !vis.IsReading() {
		id = (*params).ID()
	}
	if err := vis.U32("Id", &id); err != nil {
		return err
	}
	if vis.IsReading() {
		p, err := jointParamsDescFromID(id)
		if err != nil {
			return err
		}
		*params = p
	}
	if err := (*params).visitFields(vis); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

type BallJointDesc struct {
	LocalAnchor1 mgl32.Vec3
	LocalAnchor2 mgl32.Vec3
}

func (d *BallJointDesc) ID() uint32 { return jointIDBall }
func (d *BallJointDesc) Params() solver.JointParams {
	return solver.BallJoint{LocalAnchor1: d.LocalAnchor1, LocalAnchor2: d.LocalAnchor2}
}
func (d *BallJointDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("LocalAnchor1", &d.LocalAnchor1); err != nil {
		return err
	}
	return vis.Vec3("LocalAnchor2", &d.LocalAnchor2)
}

type FixedJointDesc struct {
	LocalAnchor1Translation mgl32.Vec3
	LocalAnchor1Rotation    mgl32.Quat
	LocalAnchor2Translation mgl32.Vec3
	LocalAnchor2Rotation    mgl32.Quat
}

func (d *FixedJointDesc) ID() uint32 { return jointIDFixed }
func (d *FixedJointDesc) Params() solver.JointParams {
	return solver.FixedJoint{
		LocalAnchor1Translation: d.LocalAnchor1Translation,
		LocalAnchor1Rotation:    d.LocalAnchor1Rotation,
		LocalAnchor2Translation: d.LocalAnchor2Translation,
		LocalAnchor2Rotation:    d.LocalAnchor2Rotation,
	}
}
func (d *FixedJointDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("LocalAnchor1Translation", &d.LocalAnchor1Translation); err != nil {
		return err
	}
	if err := vis.Quat("LocalAnchor1Rotation", &d.LocalAnchor1Rotation); err != nil {
		return err
	}
	if err := vis.Vec3("LocalAnchor2Translation", &d.LocalAnchor2Translation); err != nil {
		return err
	}
	return vis.Quat("LocalAnchor2Rotation", &d.LocalAnchor2Rotation)
}

type PrismaticJointDesc struct {
	LocalAnchor1 mgl32.Vec3
	LocalAxis1   mgl32.Vec3
	LocalAnchor2 mgl32.Vec3
	LocalAxis2   mgl32.Vec3
}

func (d *PrismaticJointDesc) ID() uint32 { return jointIDPrismatic }
func (d *PrismaticJointDesc) Params() solver.JointParams {
	return solver.PrismaticJoint{
		LocalAnchor1: d.LocalAnchor1, LocalAxis1: d.LocalAxis1,
		LocalAnchor2: d.LocalAnchor2, LocalAxis2: d.LocalAxis2,
	}
}
func (d *PrismaticJointDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("LocalAnchor1", &d.LocalAnchor1); err != nil {
		return err
	}
	if err := vis.Vec3("LocalAxis1", &d.LocalAxis1); err != nil {
		return err
	}
	if err := vis.Vec3("LocalAnchor2", &d.LocalAnchor2); err != nil {
		return err
	}
	return vis.Vec3("LocalAxis2", &d.LocalAxis2)
}

type RevoluteJointDesc struct {
	LocalAnchor1 mgl32.Vec3
	LocalAxis1   mgl32.Vec3
	LocalAnchor2 mgl32.Vec3
	LocalAxis2   mgl32.Vec3
}

func (d *RevoluteJointDesc) ID() uint32 { return jointIDRevolute }
func (d *RevoluteJointDesc) Params() solver.JointParams {
	return solver.RevoluteJoint{
		LocalAnchor1: d.LocalAnchor1, LocalAxis1: d.LocalAxis1,
		LocalAnchor2: d.LocalAnchor2, LocalAxis2: d.LocalAxis2,
	}
}
func (d *RevoluteJointDesc) visitFields(vis *visit.Visitor) error {
	if err := vis.Vec3("LocalAnchor1", &d.LocalAnchor1); err != nil {
		return err
	}
	if err := vis.Vec3("LocalAxis1", &d.LocalAxis1); err != nil {
		return err
	}
	if err := vis.Vec3("LocalAnchor2", &d.LocalAnchor2); err != nil {
		return err
	}
	return vis.Vec3("LocalAxis2", &d.LocalAxis2)
}
