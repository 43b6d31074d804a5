package visit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type sample struct {
	Name    string
	Mass    float32
	Active  bool
	Count   uint32
	Pos     mgl32.Vec3
	Rot     mgl32.Quat
	Payload []byte
}

func (s *sample) Visit(name string, vis *Visitor) error {
	if err := vis.EnterRegion(name); err != nil {
		return err
	}
	if err := vis.String("Name", &s.Name); err != nil {
		return err
	}
	if err := vis.F32("Mass", &s.Mass); err != nil {
		return err
	}
	if err := vis.Bool("Active", &s.Active); err != nil {
		return err
	}
	if err := vis.U32("Count", &s.Count); err != nil {
		return err
	}
	if err := vis.Vec3("Pos", &s.Pos); err != nil {
		return err
	}
	if err := vis.Quat("Rot", &s.Rot); err != nil {
		return err
	}
	if err := vis.Bytes("Payload", &s.Payload); err != nil {
		return err
	}
	return vis.LeaveRegion()
}

func TestRoundTrip(t *testing.T) {
	in := sample{
		Name:    "ground",
		Mass:    2.5,
		Active:  true,
		Count:   7,
		Pos:     mgl32.Vec3{1, -2, 3},
		Rot:     mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}),
		Payload: []byte{1, 2, 3, 4},
	}

	w := NewWriter()
	if err := in.Visit("Sample", w); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatal(err)
	}

	r, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	var out sample
	if err := out.Visit("Sample", r); err != nil {
		t.Fatal(err)
	}

	if out.Name != in.Name || out.Mass != in.Mass || out.Active != in.Active ||
		out.Count != in.Count || out.Pos != in.Pos || out.Rot != in.Rot ||
		!bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestReserializeByteIdentical(t *testing.T) {
	in := sample{Name: "a", Mass: 1, Count: 3, Pos: mgl32.Vec3{4, 5, 6}, Rot: mgl32.QuatIdent()}

	w1 := NewWriter()
	if err := in.Visit("Sample", w1); err != nil {
		t.Fatal(err)
	}
	var first bytes.Buffer
	if err := w1.Save(&first); err != nil {
		t.Fatal(err)
	}

	r, err := Load(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	var mid sample
	if err := mid.Visit("Sample", r); err != nil {
		t.Fatal(err)
	}

	w2 := NewWriter()
	if err := mid.Visit("Sample", w2); err != nil {
		t.Fatal(err)
	}
	var second bytes.Buffer
	if err := w2.Save(&second); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("second serialization differs from the first")
	}
}

func TestMissingRegionAndField(t *testing.T) {
	w := NewWriter()
	if err := w.EnterRegion("Only"); err != nil {
		t.Fatal(err)
	}
	x := float32(1)
	if err := w.F32("X", &x); err != nil {
		t.Fatal(err)
	}
	if err := w.LeaveRegion(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatal(err)
	}

	r, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.EnterRegion("Missing"); !errors.Is(err, ErrRegionNotFound) {
		t.Errorf("EnterRegion(Missing) = %v, want ErrRegionNotFound", err)
	}
	if err := r.EnterRegion("Only"); err != nil {
		t.Fatal(err)
	}
	var y float32
	if err := r.F32("Y", &y); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("F32(Y) = %v, want ErrFieldNotFound", err)
	}
	if err := r.F32("X", &y); err != nil || y != 1 {
		t.Errorf("F32(X) = %f, %v", y, err)
	}
}

func TestKindMismatch(t *testing.T) {
	w := NewWriter()
	x := float32(1)
	if err := w.F32("X", &x); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatal(err)
	}

	r, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	var u uint32
	if err := r.U32("X", &u); err == nil {
		t.Error("kind mismatch was not reported")
	}
}

func TestBadMagic(t *testing.T) {
	if _, err := Load(bytes.NewReader([]byte("NOPE0000"))); err == nil {
		t.Error("bad magic accepted")
	}
}
