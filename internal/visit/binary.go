package visit

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// File layout: magic, format version, then the region tree depth-first.
// Every region is name, field count, fields in visit order, child
// count, children. All integers are little endian.
var magic = [4]byte{'S', 'P', 'V', '1'}

const formatVersion uint32 = 1

// Save encodes the visitor's tree. Field and region order is the visit
// order, which makes the encoding deterministic.
func (v *Visitor) Save(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	return writeRegion(w, v.root)
}

// Load parses a tree previously written by Save and returns a reading
// visitor over it.
func Load(r io.Reader) (*Visitor, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("visit: reading magic: %w", err)
	}
	if m != magic {
		return nil, fmt.Errorf("visit: bad magic %q", m[:])
	}
	var ver uint32
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, err
	}
	if ver != formatVersion {
		return nil, fmt.Errorf("visit: unsupported format version %d", ver)
	}
	root, err := readRegion(r)
	if err != nil {
		return nil, err
	}
	return &Visitor{reading: true, root: root, stack: []*region{root}}, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeRegion(w io.Writer, reg *region) error {
	if err := writeString(w, reg.name); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(reg.fields))); err != nil {
		return err
	}
	for _, f := range reg.fields {
		if err := writeField(w, f); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(reg.children))); err != nil {
		return err
	}
	for _, c := range reg.children {
		if err := writeRegion(w, c); err != nil {
			return err
		}
	}
	return nil
}

func readRegion(r io.Reader) (*region, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	reg := &region{name: name}

	var nFields uint32
	if err := binary.Read(r, binary.LittleEndian, &nFields); err != nil {
		return nil, err
	}
	for i := uint32(0); i < nFields; i++ {
		f, err := readField(r)
		if err != nil {
			return nil, err
		}
		reg.fields = append(reg.fields, f)
	}

	var nChildren uint32
	if err := binary.Read(r, binary.LittleEndian, &nChildren); err != nil {
		return nil, err
	}
	for i := uint32(0); i < nChildren; i++ {
		c, err := readRegion(r)
		if err != nil {
			return nil, err
		}
		reg.children = append(reg.children, c)
	}
	return reg, nil
}

func writeField(w io.Writer, f *field) error {
	if err := writeString(w, f.name); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(f.kind)}); err != nil {
		return err
	}
	le := binary.LittleEndian
	switch f.kind {
	case kindBool:
		b := byte(0)
		if f.b {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case kindU32:
		return binary.Write(w, le, f.u32)
	case kindU64:
		return binary.Write(w, le, f.u64)
	case kindI64:
		return binary.Write(w, le, f.i64)
	case kindF32:
		return binary.Write(w, le, math.Float32bits(f.f32))
	case kindString:
		return writeString(w, f.str)
	case kindBytes:
		if err := binary.Write(w, le, uint32(len(f.raw))); err != nil {
			return err
		}
		_, err := w.Write(f.raw)
		return err
	case kindVec3:
		for i := 0; i < 3; i++ {
			if err := binary.Write(w, le, math.Float32bits(f.vec[i])); err != nil {
				return err
			}
		}
		return nil
	case kindQuat:
		for _, x := range [4]float32{f.quat.V[0], f.quat.V[1], f.quat.V[2], f.quat.W} {
			if err := binary.Write(w, le, math.Float32bits(x)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("visit: unknown field kind %d", f.kind)
}

func readField(r io.Reader) (*field, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	var kindByte [1]byte
	if _, err := io.ReadFull(r, kindByte[:]); err != nil {
		return nil, err
	}
	f := &field{name: name, kind: fieldKind(kindByte[0])}
	le := binary.LittleEndian
	switch f.kind {
	case kindBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		f.b = b[0] != 0
	case kindU32:
		err = binary.Read(r, le, &f.u32)
	case kindU64:
		err = binary.Read(r, le, &f.u64)
	case kindI64:
		err = binary.Read(r, le, &f.i64)
	case kindF32:
		var bits uint32
		if err = binary.Read(r, le, &bits); err == nil {
			f.f32 = math.Float32frombits(bits)
		}
	case kindString:
		f.str, err = readString(r)
	case kindBytes:
		var n uint32
		if err = binary.Read(r, le, &n); err == nil {
			f.raw = make([]byte, n)
			_, err = io.ReadFull(r, f.raw)
		}
	case kindVec3:
		for i := 0; i < 3 && err == nil; i++ {
			var bits uint32
			if err = binary.Read(r, le, &bits); err == nil {
				f.vec[i] = math.Float32frombits(bits)
			}
		}
	case kindQuat:
		var xyzw [4]float32
		for i := 0; i < 4 && err == nil; i++ {
			var bits uint32
			if err = binary.Read(r, le, &bits); err == nil {
				xyzw[i] = math.Float32frombits(bits)
			}
		}
		f.quat.V = [3]float32{xyzw[0], xyzw[1], xyzw[2]}
		f.quat.W = xyzw[3]
	default:
		return nil, fmt.Errorf("visit: unknown field kind %d", f.kind)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
