// Package visit implements the named-region, named-field serialization
// protocol the descriptor set persists through. Writing builds a region
// tree that Save encodes deterministically; Load parses the tree back
// and reading resolves fields by name, so the backing layout survives
// field reordering while an unchanged tree round-trips byte for byte.
package visit

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrRegionNotFound reports a missing named region on read. Callers
	// may treat it as an absent optional section.
	ErrRegionNotFound = errors.New("visit: region not found")
	// ErrFieldNotFound reports a missing named field on read.
	ErrFieldNotFound = errors.New("visit: field not found")
)

type fieldKind uint8

const (
	kindBool fieldKind = iota + 1
	kindU32
	kindU64
	kindI64
	kindF32
	kindString
	kindBytes
	kindVec3
	kindQuat
)

type field struct {
	name string
	kind fieldKind

	b    bool
	u32  uint32
	u64  uint64
	i64  int64
	f32  float32
	str  string
	raw  []byte
	vec  mgl32.Vec3
	quat mgl32.Quat
}

type region struct {
	name     string
	fields   []*field
	children []*region
}

func (r *region) field(name string) *field {
	for _, f := range r.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (r *region) child(name string) *region {
	for _, c := range r.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Node is implemented by every serializable descriptor.
type Node interface {
	Visit(name string, vis *Visitor) error
}

// Visitor drives one read or write pass over a region tree.
type Visitor struct {
	reading bool
	root    *region
	stack   []*region
}

// NewWriter returns a visitor that records visited values into a fresh
// tree.
func NewWriter() *Visitor {
	root := &region{name: "__root__"}
	return &Visitor{root: root, stack: []*region{root}}
}

// IsReading reports the direction of the current pass.
func (v *Visitor) IsReading() bool { return v.reading }

func (v *Visitor) current() *region {
	return v.stack[len(v.stack)-1]
}

// EnterRegion descends into the named child region, creating it when
// writing. Reading a missing region fails with ErrRegionNotFound.
func (v *Visitor) EnterRegion(name string) error {
	cur := v.current()
	child := cur.child(name)
	if child == nil {
		if v.reading {
			return fmt.Errorf("%w: %q", ErrRegionNotFound, name)
		}
		child = &region{name: name}
		cur.children = append(cur.children, child)
	}
	v.stack = append(v.stack, child)
	return nil
}

// LeaveRegion pops the current region.
func (v *Visitor) LeaveRegion() error {
	if len(v.stack) <= 1 {
		return errors.New("visit: unbalanced LeaveRegion")
	}
	v.stack = v.stack[:len(v.stack)-1]
	return nil
}

func (v *Visitor) visitField(name string, kind fieldKind) (*field, error) {
	cur := v.current()
	if v.reading {
		f := cur.field(name)
		if f == nil {
			return nil, fmt.Errorf("%w: %q in region %q", ErrFieldNotFound, name, cur.name)
		}
		if f.kind != kind {
			return nil, fmt.Errorf("visit: field %q in region %q has kind %d, expected %d", name, cur.name, f.kind, kind)
		}
		return f, nil
	}
	f := &field{name: name, kind: kind}
	cur.fields = append(cur.fields, f)
	return f, nil
}

func (v *Visitor) Bool(name string, x *bool) error {
	f, err := v.visitField(name, kindBool)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.b
	} else {
		f.b = *x
	}
	return nil
}

func (v *Visitor) U32(name string, x *uint32) error {
	f, err := v.visitField(name, kindU32)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.u32
	} else {
		f.u32 = *x
	}
	return nil
}

func (v *Visitor) U64(name string, x *uint64) error {
	f, err := v.visitField(name, kindU64)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.u64
	} else {
		f.u64 = *x
	}
	return nil
}

func (v *Visitor) I64(name string, x *int64) error {
	f, err := v.visitField(name, kindI64)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.i64
	} else {
		f.i64 = *x
	}
	return nil
}

func (v *Visitor) F32(name string, x *float32) error {
	f, err := v.visitField(name, kindF32)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.f32
	} else {
		f.f32 = *x
	}
	return nil
}

func (v *Visitor) String(name string, x *string) error {
	f, err := v.visitField(name, kindString)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.str
	} else {
		f.str = *x
	}
	return nil
}

func (v *Visitor) Bytes(name string, x *[]byte) error {
	f, err := v.visitField(name, kindBytes)
	if err != nil {
		return err
	}
	if v.reading {
		*x = append([]byte(nil), f.raw...)
	} else {
		f.raw = append([]byte(nil), *x...)
	}
	return nil
}

func (v *Visitor) Vec3(name string, x *mgl32.Vec3) error {
	f, err := v.visitField(name, kindVec3)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.vec
	} else {
		f.vec = *x
	}
	return nil
}

func (v *Visitor) Quat(name string, x *mgl32.Quat) error {
	f, err := v.visitField(name, kindQuat)
	if err != nil {
		return err
	}
	if v.reading {
		*x = f.quat
	} else {
		f.quat = *x
	}
	return nil
}
