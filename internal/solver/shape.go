package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeType discriminates the concrete collider shapes.
type ShapeType int

const (
	ShapeBall ShapeType = iota
	ShapeCylinder
	ShapeRoundCylinder
	ShapeCone
	ShapeCuboid
	ShapeCapsule
	ShapeSegment
	ShapeTriangle
	ShapeTriMesh
	ShapeHeightfield
)

// FeatureID identifies the shape feature a ray intersection landed on.
type FeatureID struct {
	Kind  FeatureKind
	Index uint32
}

type FeatureKind uint8

const (
	FeatureUnknown FeatureKind = iota
	FeatureFace
)

// Ray is a half-line. Dir must be unit length so that TOI equals the
// distance along the ray.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// PointAt returns Origin + Dir*toi.
func (r Ray) PointAt(toi float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(toi))
}

// RayIntersection is a single shape-local ray hit.
type RayIntersection struct {
	TOI     float32
	Normal  mgl32.Vec3
	Feature FeatureID
}

// Shape is collider geometry. Rays are cast in the shape's local frame;
// the query pipeline handles world transforms.
type Shape interface {
	Type() ShapeType
	// BoundingRadius bounds the shape around the local origin, for the
	// broad AABB pass.
	BoundingRadius() float32
	// CastLocalRay returns the closest intersection within maxTOI.
	CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool)
}

// Ball is a sphere centered at the local origin.
type Ball struct {
	Radius float32
}

func (b Ball) Type() ShapeType         { return ShapeBall }
func (b Ball) BoundingRadius() float32 { return b.Radius }

func (b Ball) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	toi, ok := raySphere(ray, mgl32.Vec3{}, b.Radius, maxTOI)
	if !ok {
		return RayIntersection{}, false
	}
	n := safeNormalize(ray.PointAt(toi))
	return RayIntersection{TOI: toi, Normal: n}, true
}

// Cuboid is a box with the given half extents.
type Cuboid struct {
	HalfExtents mgl32.Vec3
}

func (c Cuboid) Type() ShapeType         { return ShapeCuboid }
func (c Cuboid) BoundingRadius() float32 { return c.HalfExtents.Len() }

func (c Cuboid) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	toi, axis, sign, ok := rayAABB(ray, c.HalfExtents.Mul(-1), c.HalfExtents, maxTOI)
	if !ok {
		return RayIntersection{}, false
	}
	var n mgl32.Vec3
	n[axis] = sign
	return RayIntersection{TOI: toi, Normal: n}, true
}

// Cylinder is aligned with the local Y axis.
type Cylinder struct {
	HalfHeight float32
	Radius     float32
}

func (c Cylinder) Type() ShapeType { return ShapeCylinder }
func (c Cylinder) BoundingRadius() float32 {
	return float32(math.Hypot(float64(c.HalfHeight), float64(c.Radius)))
}

func (c Cylinder) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	return rayCylinder(ray, c.HalfHeight, c.Radius, maxTOI)
}

// RoundCylinder is a cylinder with rounded edges. Ray casts treat it as
// the underlying cylinder; the border only matters for contacts, which
// are the solver pipeline's business.
type RoundCylinder struct {
	HalfHeight   float32
	Radius       float32
	BorderRadius float32
}

func (c RoundCylinder) Type() ShapeType { return ShapeRoundCylinder }
func (c RoundCylinder) BoundingRadius() float32 {
	return Cylinder{c.HalfHeight, c.Radius}.BoundingRadius() + c.BorderRadius
}

func (c RoundCylinder) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	return rayCylinder(ray, c.HalfHeight, c.Radius, maxTOI)
}

// Cone has its base at y = -HalfHeight and apex at y = +HalfHeight.
type Cone struct {
	HalfHeight float32
	Radius     float32
}

func (c Cone) Type() ShapeType { return ShapeCone }
func (c Cone) BoundingRadius() float32 {
	return float32(math.Hypot(float64(c.HalfHeight), float64(c.Radius)))
}

func (c Cone) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	return rayCone(ray, c.HalfHeight, c.Radius, maxTOI)
}

// Capsule is a segment inflated by a radius.
type Capsule struct {
	Begin  mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
}

func (c Capsule) Type() ShapeType { return ShapeCapsule }
func (c Capsule) BoundingRadius() float32 {
	r := c.Begin.Len()
	if e := c.End.Len(); e > r {
		r = e
	}
	return r + c.Radius
}

func (c Capsule) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	return rayCapsule(ray, c.Begin, c.End, c.Radius, maxTOI)
}

// Segment is a zero-thickness line segment. Rays never hit it.
type Segment struct {
	Begin mgl32.Vec3
	End   mgl32.Vec3
}

func (s Segment) Type() ShapeType { return ShapeSegment }
func (s Segment) BoundingRadius() float32 {
	r := s.Begin.Len()
	if e := s.End.Len(); e > r {
		r = e
	}
	return r
}

func (s Segment) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	return RayIntersection{}, false
}

// Triangle is a single triangle.
type Triangle struct {
	A, B, C mgl32.Vec3
}

func (t Triangle) Type() ShapeType { return ShapeTriangle }
func (t Triangle) BoundingRadius() float32 {
	r := t.A.Len()
	if b := t.B.Len(); b > r {
		r = b
	}
	if c := t.C.Len(); c > r {
		r = c
	}
	return r
}

func (t Triangle) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	toi, n, ok := rayTriangle(ray, t.A, t.B, t.C, maxTOI)
	if !ok {
		return RayIntersection{}, false
	}
	return RayIntersection{TOI: toi, Normal: n, Feature: FeatureID{Kind: FeatureFace}}, true
}

// TriMesh is an immutable indexed triangle mesh with vertices already
// baked into the collider's local frame.
type TriMesh struct {
	Vertices []mgl32.Vec3
	Indices  [][3]uint32

	radius float32
}

// NewTriMesh builds a trimesh and precomputes its bounding radius.
func NewTriMesh(vertices []mgl32.Vec3, indices [][3]uint32) *TriMesh {
	m := &TriMesh{Vertices: vertices, Indices: indices}
	for _, v := range vertices {
		if l := v.Len(); l > m.radius {
			m.radius = l
		}
	}
	return m
}

func (m *TriMesh) Type() ShapeType         { return ShapeTriMesh }
func (m *TriMesh) BoundingRadius() float32 { return m.radius }

func (m *TriMesh) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	best := RayIntersection{TOI: maxTOI}
	found := false
	for i, tri := range m.Indices {
		a := m.Vertices[tri[0]]
		b := m.Vertices[tri[1]]
		c := m.Vertices[tri[2]]
		toi, n, ok := rayTriangle(ray, a, b, c, best.TOI)
		if ok && (!found || toi < best.TOI) {
			best = RayIntersection{
				TOI:     toi,
				Normal:  n,
				Feature: FeatureID{Kind: FeatureFace, Index: uint32(i)},
			}
			found = true
		}
	}
	return best, found
}

// Heightfield is a regular grid of heights spanning Scale.X() by
// Scale.Z(), centered on the local origin, sampled row-major.
type Heightfield struct {
	Heights [][]float32
	Scale   mgl32.Vec3
}

func (h Heightfield) Type() ShapeType { return ShapeHeightfield }

func (h Heightfield) BoundingRadius() float32 {
	maxH := float32(0)
	for _, row := range h.Heights {
		for _, y := range row {
			if a := float32(math.Abs(float64(y))); a > maxH {
				maxH = a
			}
		}
	}
	half := mgl32.Vec3{h.Scale.X() / 2, maxH * h.Scale.Y(), h.Scale.Z() / 2}
	return half.Len()
}

func (h Heightfield) CastLocalRay(ray Ray, maxTOI float32) (RayIntersection, bool) {
	rows := len(h.Heights)
	if rows < 2 || len(h.Heights[0]) < 2 {
		return RayIntersection{}, false
	}
	cols := len(h.Heights[0])

	cellX := h.Scale.X() / float32(cols-1)
	cellZ := h.Scale.Z() / float32(rows-1)
	x0 := -h.Scale.X() / 2
	z0 := -h.Scale.Z() / 2

	vert := func(r, c int) mgl32.Vec3 {
		return mgl32.Vec3{
			x0 + float32(c)*cellX,
			h.Heights[r][c] * h.Scale.Y(),
			z0 + float32(r)*cellZ,
		}
	}

	best := RayIntersection{TOI: maxTOI}
	found := false
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			quad := [2][3]mgl32.Vec3{
				{vert(r, c), vert(r, c+1), vert(r+1, c)},
				{vert(r+1, c), vert(r, c+1), vert(r+1, c+1)},
			}
			for t, tri := range quad {
				toi, n, ok := rayTriangle(ray, tri[0], tri[1], tri[2], best.TOI)
				if ok && (!found || toi < best.TOI) {
					idx := uint32((r*(cols-1)+c)*2 + t)
					best = RayIntersection{
						TOI:     toi,
						Normal:  n,
						Feature: FeatureID{Kind: FeatureFace, Index: idx},
					}
					found = true
				}
			}
		}
	}
	return best, found
}
