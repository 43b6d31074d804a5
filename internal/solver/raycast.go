package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const rayEpsilon = 1e-7

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < rayEpsilon {
		return v
	}
	return v.Normalize()
}

func raySphere(ray Ray, center mgl32.Vec3, radius, maxTOI float32) (float32, bool) {
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		// Origin inside the sphere: report the entry at zero distance.
		if -b+sq < 0 {
			return 0, false
		}
		t = 0
	}
	if t > maxTOI {
		return 0, false
	}
	return t, true
}

// rayAABB returns the entry distance plus the slab axis and the sign of
// the face normal that was crossed.
func rayAABB(ray Ray, min, max mgl32.Vec3, maxTOI float32) (float32, int, float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	axis := 0
	sign := float32(-1)

	for i := 0; i < 3; i++ {
		if float32(math.Abs(float64(ray.Dir[i]))) < rayEpsilon {
			if ray.Origin[i] < min[i] || ray.Origin[i] > max[i] {
				return 0, 0, 0, false
			}
			continue
		}
		inv := 1 / ray.Dir[i]
		t1 := (min[i] - ray.Origin[i]) * inv
		t2 := (max[i] - ray.Origin[i]) * inv
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin = t1
			axis = i
			sign = s
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, 0, 0, false
		}
	}
	if tmax < 0 || tmin > maxTOI {
		return 0, 0, 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, axis, sign, true
}

// rayTriangle is the Moller-Trumbore intersection, both-sided, with the
// returned normal facing against the ray.
func rayTriangle(ray Ray, a, b, c mgl32.Vec3, maxTOI float32) (float32, mgl32.Vec3, bool) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	p := ray.Dir.Cross(ac)
	det := ab.Dot(p)
	if float32(math.Abs(float64(det))) < rayEpsilon {
		return 0, mgl32.Vec3{}, false
	}
	inv := 1 / det
	ao := ray.Origin.Sub(a)
	u := ao.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, mgl32.Vec3{}, false
	}
	q := ao.Cross(ab)
	v := ray.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, mgl32.Vec3{}, false
	}
	t := ac.Dot(q) * inv
	if t < 0 || t > maxTOI {
		return 0, mgl32.Vec3{}, false
	}
	n := safeNormalize(ab.Cross(ac))
	if n.Dot(ray.Dir) > 0 {
		n = n.Mul(-1)
	}
	return t, n, true
}

func rayCylinder(ray Ray, halfHeight, radius, maxTOI float32) (RayIntersection, bool) {
	best := RayIntersection{TOI: maxTOI}
	found := false

	// Lateral surface: x^2 + z^2 = r^2 restricted to |y| <= h.
	a := ray.Dir.X()*ray.Dir.X() + ray.Dir.Z()*ray.Dir.Z()
	if a > rayEpsilon {
		b := ray.Origin.X()*ray.Dir.X() + ray.Origin.Z()*ray.Dir.Z()
		c := ray.Origin.X()*ray.Origin.X() + ray.Origin.Z()*ray.Origin.Z() - radius*radius
		disc := b*b - a*c
		if disc >= 0 {
			sq := float32(math.Sqrt(float64(disc)))
			for _, t := range []float32{(-b - sq) / a, (-b + sq) / a} {
				if t < 0 || t > best.TOI {
					continue
				}
				p := ray.PointAt(t)
				if p.Y() < -halfHeight || p.Y() > halfHeight {
					continue
				}
				best = RayIntersection{TOI: t, Normal: safeNormalize(mgl32.Vec3{p.X(), 0, p.Z()})}
				found = true
				break
			}
		}
	}

	// End caps.
	for _, side := range []float32{-1, 1} {
		y := side * halfHeight
		if float32(math.Abs(float64(ray.Dir.Y()))) < rayEpsilon {
			continue
		}
		t := (y - ray.Origin.Y()) / ray.Dir.Y()
		if t < 0 || t > best.TOI {
			continue
		}
		p := ray.PointAt(t)
		if p.X()*p.X()+p.Z()*p.Z() > radius*radius {
			continue
		}
		best = RayIntersection{TOI: t, Normal: mgl32.Vec3{0, side, 0}}
		found = true
	}

	return best, found
}

func rayCone(ray Ray, halfHeight, radius, maxTOI float32) (RayIntersection, bool) {
	best := RayIntersection{TOI: maxTOI}
	found := false

	// Lateral surface of a cone with apex at +h and base disc at -h:
	// x^2 + z^2 = k^2 (h - y)^2 with k = r / 2h.
	k := radius / (2 * halfHeight)
	o := ray.Origin
	d := ray.Dir
	a := d.X()*d.X() + d.Z()*d.Z() - k*k*d.Y()*d.Y()
	b := o.X()*d.X() + o.Z()*d.Z() + k*k*(halfHeight-o.Y())*d.Y()
	c := o.X()*o.X() + o.Z()*o.Z() - k*k*(halfHeight-o.Y())*(halfHeight-o.Y())
	if float32(math.Abs(float64(a))) > rayEpsilon {
		disc := b*b - a*c
		if disc >= 0 {
			sq := float32(math.Sqrt(float64(disc)))
			for _, t := range []float32{(-b - sq) / a, (-b + sq) / a} {
				if t < 0 || t > best.TOI {
					continue
				}
				p := ray.PointAt(t)
				if p.Y() < -halfHeight || p.Y() > halfHeight {
					continue
				}
				n := safeNormalize(mgl32.Vec3{p.X(), k * k * (halfHeight - p.Y()), p.Z()})
				best = RayIntersection{TOI: t, Normal: n}
				found = true
				break
			}
		}
	}

	// Base disc at y = -h.
	if float32(math.Abs(float64(d.Y()))) > rayEpsilon {
		t := (-halfHeight - o.Y()) / d.Y()
		if t >= 0 && t <= best.TOI {
			p := ray.PointAt(t)
			if p.X()*p.X()+p.Z()*p.Z() <= radius*radius {
				best = RayIntersection{TOI: t, Normal: mgl32.Vec3{0, -1, 0}}
				found = true
			}
		}
	}

	return best, found
}

func rayCapsule(ray Ray, segA, segB mgl32.Vec3, radius, maxTOI float32) (RayIntersection, bool) {
	ba := segB.Sub(segA)
	oa := ray.Origin.Sub(segA)
	baba := ba.Dot(ba)

	capsuleNormal := func(toi float32) mgl32.Vec3 {
		p := ray.PointAt(toi)
		s := float32(0)
		if baba > rayEpsilon {
			s = p.Sub(segA).Dot(ba) / baba
			s = mgl32.Clamp(s, 0, 1)
		}
		return safeNormalize(p.Sub(segA.Add(ba.Mul(s))))
	}

	// Degenerate segment: just a sphere.
	if baba < rayEpsilon {
		toi, ok := raySphere(ray, segA, radius, maxTOI)
		if !ok {
			return RayIntersection{}, false
		}
		return RayIntersection{TOI: toi, Normal: capsuleNormal(toi)}, true
	}

	bard := ba.Dot(ray.Dir)
	baoa := ba.Dot(oa)
	rdoa := ray.Dir.Dot(oa)
	oaoa := oa.Dot(oa)

	a := baba - bard*bard
	b := baba*rdoa - baoa*bard
	c := baba*oaoa - baoa*baoa - radius*radius*baba
	h := b*b - a*c
	if h >= 0 && a > rayEpsilon {
		t := (-b - float32(math.Sqrt(float64(h)))) / a
		y := baoa + t*bard
		if t >= 0 && t <= maxTOI && y > 0 && y < baba {
			return RayIntersection{TOI: t, Normal: capsuleNormal(t)}, true
		}
	}

	// Spherical caps.
	bestTOI := maxTOI
	found := false
	for _, end := range []mgl32.Vec3{segA, segB} {
		if toi, ok := raySphere(ray, end, radius, bestTOI); ok {
			bestTOI = toi
			found = true
		}
	}
	if !found {
		return RayIntersection{}, false
	}
	return RayIntersection{TOI: bestTOI, Normal: capsuleNormal(bestTOI)}, true
}
