package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Type identifies the shape of a uniform value. The type of a registered uniform never changes.
type Type int

const (
	// TypeFloat is a single scalar, f32 on the GPU.
	TypeFloat Type = iota

	// TypeColor is an RGB color, vec3<f32> on the GPU.
	TypeColor

	// TypeVec2 is a two component vector, vec2<f32> on the GPU.
	TypeVec2

	// TypeVec3 is a three component vector, vec3<f32> on the GPU.
	TypeVec3
)

func (t Type) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeColor:
		return "color"
	case TypeVec2:
		return "vec2"
	case TypeVec3:
		return "vec3"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// components returns how many float lanes a value of this type occupies.
func (t Type) components() int {
	switch t {
	case TypeFloat:
		return 1
	case TypeVec2:
		return 2
	default:
		return 3
	}
}

// Value is a tagged union over the supported uniform shapes.
// Values are immutable; use the constructors to build one.
type Value struct {
	typ  Type
	data [3]float64
}

// Float builds a scalar uniform value.
func Float(x float64) Value {
	return Value{typ: TypeFloat, data: [3]float64{x}}
}

// Color builds a color uniform value.
func Color(c common.Color) Value {
	return Value{typ: TypeColor, data: c}
}

// Vec2 builds a two component vector uniform value.
func Vec2(v common.Vec2) Value {
	return Value{typ: TypeVec2, data: [3]float64{v[0], v[1]}}
}

// Vec3 builds a three component vector uniform value.
func Vec3(v common.Vec3) Value {
	return Value{typ: TypeVec3, data: v}
}

// Type returns the tag of the value.
func (v Value) Type() Type {
	return v.typ
}

// AsFloat returns the scalar payload. Only meaningful for TypeFloat.
func (v Value) AsFloat() float64 {
	return v.data[0]
}

// AsColor returns the color payload. Only meaningful for TypeColor.
func (v Value) AsColor() common.Color {
	return common.Color(v.data)
}

// AsVec2 returns the vector payload. Only meaningful for TypeVec2.
func (v Value) AsVec2() common.Vec2 {
	return common.Vec2{v.data[0], v.data[1]}
}

// AsVec3 returns the vector payload. Only meaningful for TypeVec3.
func (v Value) AsVec3() common.Vec3 {
	return common.Vec3(v.data)
}

func (v Value) String() string {
	switch v.typ {
	case TypeFloat:
		return fmt.Sprintf("float(%g)", v.data[0])
	case TypeVec2:
		return fmt.Sprintf("vec2(%g, %g)", v.data[0], v.data[1])
	default:
		return fmt.Sprintf("%s(%g, %g, %g)", v.typ, v.data[0], v.data[1], v.data[2])
	}
}
