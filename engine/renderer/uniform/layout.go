package uniform

import (
	"encoding/binary"
	"math"
)

// Field describes where a single uniform lives inside a packed uniform block.
type Field struct {
	Name   string
	Type   Type
	Offset int
	Size   int
}

// std140 returns the size and base alignment in bytes of a uniform type.
// vec3 (and colors) occupy 12 bytes but align to 16, matching WGSL uniform address space rules.
func std140(t Type) (size, align int) {
	switch t {
	case TypeFloat:
		return 4, 4
	case TypeVec2:
		return 8, 8
	default:
		return 12, 16
	}
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

func (s *store) Layout() ([]Field, int) {
	fields := make([]Field, 0, len(s.order))
	offset := 0
	for _, name := range s.order {
		t := s.values[name].typ
		size, align := std140(t)
		offset = alignUp(offset, align)
		fields = append(fields, Field{Name: name, Type: t, Offset: offset, Size: size})
		offset += size
	}
	return fields, alignUp(offset, 16)
}

func (s *store) Pack() []byte {
	fields, total := s.Layout()
	buf := make([]byte, total)
	for _, f := range fields {
		v := s.values[f.Name]
		for i := 0; i < f.Type.components(); i++ {
			at := f.Offset + i*4
			binary.LittleEndian.PutUint32(buf[at:at+4], math.Float32bits(float32(v.data[i])))
		}
	}
	return buf
}
