package solver

import "github.com/go-gl/mathgl/mgl32"

type queryEntry struct {
	collider Handle
	min, max mgl32.Vec3
}

// QueryPipeline answers ray queries against a snapshot of the collider
// set. It must be updated after any structural change: entries refer to
// colliders by handle and a stale snapshot may point at freed slots.
type QueryPipeline struct {
	entries []queryEntry
}

// Update rebuilds the snapshot from the current sets.
func (q *QueryPipeline) Update(bodies *BodySet, colliders *ColliderSet) {
	q.entries = q.entries[:0]
	for _, h := range colliders.Handles() {
		c := colliders.Get(h)
		body := bodies.Get(c.parent)
		if body == nil {
			continue
		}
		pos, _ := c.WorldTransform(body)
		r := c.Shape.BoundingRadius()
		ext := mgl32.Vec3{r, r, r}
		q.entries = append(q.entries, queryEntry{
			collider: h,
			min:      pos.Sub(ext),
			max:      pos.Add(ext),
		})
	}
}

// IntersectionsWithRay calls fn for every collider the ray hits within
// maxTOI, filtered by interaction groups, in snapshot order. fn returns
// false to stop the search.
func (q *QueryPipeline) IntersectionsWithRay(
	bodies *BodySet,
	colliders *ColliderSet,
	ray Ray,
	maxTOI float32,
	groups InteractionGroups,
	fn func(Handle, RayIntersection) bool,
) {
	for _, e := range q.entries {
		c := colliders.Get(e.collider)
		if c == nil {
			continue
		}
		if !groups.Test(c.CollisionGroups) {
			continue
		}
		if _, _, _, ok := rayAABB(ray, e.min, e.max, maxTOI); !ok {
			continue
		}

		body := bodies.Get(c.parent)
		if body == nil {
			continue
		}
		pos, rot := c.WorldTransform(body)
		invRot := rot.Inverse()
		local := Ray{
			Origin: invRot.Rotate(ray.Origin.Sub(pos)),
			Dir:    invRot.Rotate(ray.Dir),
		}

		hit, ok := c.Shape.CastLocalRay(local, maxTOI)
		if !ok {
			continue
		}
		hit.Normal = rot.Rotate(hit.Normal)
		if !fn(e.collider, hit) {
			return
		}
	}
}
