package physics

import (
	"sort"

	"github.com/google/uuid"

	"github.com/san-kum/scenephys/internal/bimap"
	"github.com/san-kum/scenephys/internal/scenegraph"
	"github.com/san-kum/scenephys/internal/visit"
)

// Binder is the node to body association the resolve and embed
// pipelines query to find which scene node supplies geometry for a
// given body. It is owned by the scene, not by the world.
type Binder struct {
	m *bimap.Map[scenegraph.NodeHandle, BodyHandle]
}

func NewBinder() *Binder {
	return &Binder{m: bimap.New[scenegraph.NodeHandle, BodyHandle]()}
}

// Bind associates node with body, replacing any binding either side
// already had.
func (b *Binder) Bind(node scenegraph.NodeHandle, body BodyHandle) {
	b.m.Insert(node, body)
}

// UnbindNode removes the binding holding node.
func (b *Binder) UnbindNode(node scenegraph.NodeHandle) (BodyHandle, bool) {
	return b.m.RemoveByKey(node)
}

// UnbindBody removes the binding holding body.
func (b *Binder) UnbindBody(body BodyHandle) (scenegraph.NodeHandle, bool) {
	return b.m.RemoveByValue(body)
}

// BodyOf returns the body bound to node.
func (b *Binder) BodyOf(node scenegraph.NodeHandle) (BodyHandle, bool) {
	return b.m.ValueOf(node)
}

// NodeOf returns the node bound to body.
func (b *Binder) NodeOf(body BodyHandle) (scenegraph.NodeHandle, bool) {
	return b.m.KeyOf(body)
}

func (b *Binder) Len() int {
	return b.m.Len()
}

// ForEach calls fn for every binding. Iteration order is unspecified.
func (b *Binder) ForEach(fn func(node scenegraph.NodeHandle, body BodyHandle)) {
	for node, body := range b.m.Forward() {
		fn(node, body)
	}
}

// Visit serializes the binding table. Entries are ordered by node
// handle so saves are deterministic.
func (b *Binder) Visit(name string, vis *visit.Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}

	type entry struct {
		node scenegraph.NodeHandle
		body BodyHandle
	}
	var entries []entry
	if !vis.IsReading() {
		for node, body := range b.m.Forward() {
			entries = append(entries, entry{node, body})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].node.Index != entries[j].node.Index {
				return entries[i].node.Index < entries[j].node.Index
			}
			return entries[i].node.Generation < entries[j].node.Generation
		})
	}

	count := uint32(len(entries))
	if err := vis.U32("Length", &count); err != nil {
		return err
	}
	if vis.IsReading() {
		entries = make([]entry, count)
	}
	for i := range entries {
		e := &entries[i]
		if err := vis.EnterRegion(itemName(i)); err != nil {
			return err
		}
		if err := vis.U32("NodeIndex", &e.node.Index); err != nil {
			return err
		}
		if err := vis.U32("NodeGeneration", &e.node.Generation); err != nil {
			return err
		}
		id := uuid.UUID(e.body)
		if err := visitUUID(vis, "Body", &id); err != nil {
			return err
		}
		e.body = BodyHandle(id)
		if err := vis.LeaveRegion(); err != nil {
			return err
		}
	}
	if vis.IsReading() {
		b.m = bimap.New[scenegraph.NodeHandle, BodyHandle]()
		for _, e := range entries {
			b.m.Insert(e.node, e.body)
		}
	}
	return vis.LeaveRegion()
}
