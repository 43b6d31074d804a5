package physics

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/scenephys/internal/solver"
)

// Line is one world-space debug line segment.
type Line struct {
	Begin mgl32.Vec3
	End   mgl32.Vec3
	Color color.RGBA
}

// DrawContext accumulates one frame of debug geometry as line
// primitives for an external renderer. Purely additive; the renderer
// clears it between frames.
type DrawContext struct {
	Lines []Line
}

func (ctx *DrawContext) Clear() {
	ctx.Lines = ctx.Lines[:0]
}

func (ctx *DrawContext) AddLine(begin, end mgl32.Vec3, c color.RGBA) {
	ctx.Lines = append(ctx.Lines, Line{Begin: begin, End: end, Color: c})
}

// DrawTransform draws the basis of a transform as three colored axis
// lines.
func (ctx *DrawContext) DrawTransform(m mgl32.Mat4) {
	origin := mgl32.TransformCoordinate(mgl32.Vec3{}, m)
	x := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m)
	y := mgl32.TransformCoordinate(mgl32.Vec3{0, 1, 0}, m)
	z := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 1}, m)
	ctx.AddLine(origin, x, color.RGBA{R: 255, A: 255})
	ctx.AddLine(origin, y, color.RGBA{G: 255, A: 255})
	ctx.AddLine(origin, z, color.RGBA{B: 255, A: 255})
}

// DrawOOB draws the twelve edges of an oriented box.
func (ctx *DrawContext) DrawOOB(halfExtents mgl32.Vec3, m mgl32.Mat4, c color.RGBA) {
	h := halfExtents
	corners := [8]mgl32.Vec3{
		{-h.X(), -h.Y(), -h.Z()},
		{h.X(), -h.Y(), -h.Z()},
		{h.X(), h.Y(), -h.Z()},
		{-h.X(), h.Y(), -h.Z()},
		{-h.X(), -h.Y(), h.Z()},
		{h.X(), -h.Y(), h.Z()},
		{h.X(), h.Y(), h.Z()},
		{-h.X(), h.Y(), h.Z()},
	}
	for i := range corners {
		corners[i] = mgl32.TransformCoordinate(corners[i], m)
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		ctx.AddLine(corners[e[0]], corners[e[1]], c)
	}
}

// DrawSphere draws a latitude/longitude wireframe sphere.
func (ctx *DrawContext) DrawSphere(m mgl32.Mat4, slices, stacks int, radius float32, c color.RGBA) {
	dTheta := math.Pi / float64(stacks)
	dPhi := 2 * math.Pi / float64(slices)
	point := func(theta, phi float64) mgl32.Vec3 {
		sinTheta := float32(math.Sin(theta))
		p := mgl32.Vec3{
			radius * sinTheta * float32(math.Cos(phi)),
			radius * float32(math.Cos(theta)),
			radius * sinTheta * float32(math.Sin(phi)),
		}
		return mgl32.TransformCoordinate(p, m)
	}
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			theta := float64(i) * dTheta
			phi := float64(j) * dPhi
			p := point(theta, phi)
			ctx.AddLine(p, point(theta+dTheta, phi), c)
			ctx.AddLine(p, point(theta, phi+dPhi), c)
		}
	}
}

func circlePoint(radius float32, y float32, phi float64) mgl32.Vec3 {
	return mgl32.Vec3{
		radius * float32(math.Cos(phi)),
		y,
		radius * float32(math.Sin(phi)),
	}
}

// DrawCylinder draws two rings joined by vertical lines. The cylinder
// is aligned with the transform's local Y axis.
func (ctx *DrawContext) DrawCylinder(m mgl32.Mat4, sides int, halfHeight, radius float32, c color.RGBA) {
	dPhi := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		phi := float64(i) * dPhi
		top0 := mgl32.TransformCoordinate(circlePoint(radius, halfHeight, phi), m)
		top1 := mgl32.TransformCoordinate(circlePoint(radius, halfHeight, phi+dPhi), m)
		bot0 := mgl32.TransformCoordinate(circlePoint(radius, -halfHeight, phi), m)
		bot1 := mgl32.TransformCoordinate(circlePoint(radius, -halfHeight, phi+dPhi), m)
		ctx.AddLine(top0, top1, c)
		ctx.AddLine(bot0, bot1, c)
		ctx.AddLine(top0, bot0, c)
	}
}

// DrawCone draws a base ring with lines up to the apex. Base at
// -halfHeight, apex at +halfHeight on the local Y axis.
func (ctx *DrawContext) DrawCone(m mgl32.Mat4, sides int, halfHeight, radius float32, c color.RGBA) {
	apex := mgl32.TransformCoordinate(mgl32.Vec3{0, halfHeight, 0}, m)
	dPhi := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		phi := float64(i) * dPhi
		b0 := mgl32.TransformCoordinate(circlePoint(radius, -halfHeight, phi), m)
		b1 := mgl32.TransformCoordinate(circlePoint(radius, -halfHeight, phi+dPhi), m)
		ctx.AddLine(b0, b1, c)
		ctx.AddLine(b0, apex, c)
	}
}

// DrawSegmentCapsule approximates a capsule as a wire cylinder between
// the two points plus a wire sphere at each end.
func (ctx *DrawContext) DrawSegmentCapsule(m mgl32.Mat4, begin, end mgl32.Vec3, radius float32, c color.RGBA) {
	b := mgl32.TransformCoordinate(begin, m)
	e := mgl32.TransformCoordinate(end, m)
	axis := e.Sub(b)
	length := axis.Len()

	capAt := func(center mgl32.Vec3) {
		t := mgl32.Translate3D(center.X(), center.Y(), center.Z())
		ctx.DrawSphere(t, 8, 4, radius, c)
	}
	capAt(b)
	capAt(e)
	if length == 0 {
		return
	}

	// Side lines between the end rings.
	dir := axis.Mul(1 / length)
	up := mgl32.Vec3{0, 1, 0}
	if float32(math.Abs(float64(dir.Dot(up)))) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	side := dir.Cross(up).Normalize()
	out := dir.Cross(side).Normalize()
	const sides = 8
	for i := 0; i < sides; i++ {
		phi := 2 * math.Pi * float64(i) / sides
		offset := side.Mul(radius * float32(math.Cos(phi))).
			Add(out.Mul(radius * float32(math.Sin(phi))))
		ctx.AddLine(b.Add(offset), e.Add(offset), c)
	}
}

// DrawTriangle draws the three edges of a triangle.
func (ctx *DrawContext) DrawTriangle(a, b, c mgl32.Vec3, col color.RGBA) {
	ctx.AddLine(a, b, col)
	ctx.AddLine(b, c, col)
	ctx.AddLine(c, a, col)
}

var debugColliderColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// DebugDraw projects every live body and collider into line primitives
// in world space.
func (w *World) DebugDraw(ctx *DrawContext) {
	for _, bh := range w.bodies.Handles() {
		body := w.bodies.Get(bh)
		bodyTransform := poseMatrix(body.Position, body.Rotation)
		ctx.DrawTransform(bodyTransform)

		for _, ch := range body.Colliders() {
			c := w.colliders.Get(ch)
			if c == nil {
				continue
			}
			pos, rot := c.WorldTransform(body)
			m := poseMatrix(pos, rot)

			switch shape := c.Shape.(type) {
			case solver.Ball:
				ctx.DrawSphere(m, 10, 10, shape.Radius, debugColliderColor)
			case solver.Cuboid:
				ctx.DrawOOB(shape.HalfExtents, m, debugColliderColor)
			case solver.Cylinder:
				ctx.DrawCylinder(m, 10, shape.HalfHeight, shape.Radius, debugColliderColor)
			case solver.RoundCylinder:
				ctx.DrawCylinder(m, 10, shape.HalfHeight, shape.Radius+shape.BorderRadius, debugColliderColor)
			case solver.Cone:
				ctx.DrawCone(m, 10, shape.HalfHeight, shape.Radius, debugColliderColor)
			case solver.Capsule:
				ctx.DrawSegmentCapsule(m, shape.Begin, shape.End, shape.Radius, debugColliderColor)
			case solver.Segment:
				ctx.AddLine(
					mgl32.TransformCoordinate(shape.Begin, m),
					mgl32.TransformCoordinate(shape.End, m),
					debugColliderColor,
				)
			case solver.Triangle:
				ctx.DrawTriangle(
					mgl32.TransformCoordinate(shape.A, m),
					mgl32.TransformCoordinate(shape.B, m),
					mgl32.TransformCoordinate(shape.C, m),
					debugColliderColor,
				)
			case *solver.TriMesh:
				for _, tri := range shape.Indices {
					ctx.DrawTriangle(
						mgl32.TransformCoordinate(shape.Vertices[tri[0]], m),
						mgl32.TransformCoordinate(shape.Vertices[tri[1]], m),
						mgl32.TransformCoordinate(shape.Vertices[tri[2]], m),
						debugColliderColor,
					)
				}
			case solver.Heightfield:
				drawHeightfield(ctx, m, shape)
			}
		}
	}
}

func drawHeightfield(ctx *DrawContext, m mgl32.Mat4, h solver.Heightfield) {
	rows := len(h.Heights)
	if rows < 2 || len(h.Heights[0]) < 2 {
		return
	}
	cols := len(h.Heights[0])
	vert := func(r, c int) mgl32.Vec3 {
		p := mgl32.Vec3{
			-h.Scale.X()/2 + float32(c)*h.Scale.X()/float32(cols-1),
			h.Heights[r][c] * h.Scale.Y(),
			-h.Scale.Z()/2 + float32(r)*h.Scale.Z()/float32(rows-1),
		}
		return mgl32.TransformCoordinate(p, m)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				ctx.AddLine(vert(r, c), vert(r, c+1), debugColliderColor)
			}
			if r+1 < rows {
				ctx.AddLine(vert(r, c), vert(r+1, c), debugColliderColor)
			}
		}
	}
}

func poseMatrix(pos mgl32.Vec3, rot mgl32.Quat) mgl32.Mat4 {
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(rot.Mat4())
}
