package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// UniformMember is one field of a WGSL uniform struct and where it lives in the buffer.
type UniformMember struct {
	Name   string
	Type   string
	Offset int
	Size   int
}

// UniformBlock is a `var<uniform>` declaration resolved to its struct layout.
type UniformBlock struct {
	Group   int
	Binding int
	Var     string
	Struct  string
	Members []UniformMember
	Size    int
}

// wgslLayout holds the byte size and alignment of a WGSL type in the uniform address space.
type wgslLayout struct {
	size  int
	align int
}

// wgslLayouts maps the host-shareable WGSL types a uniform block may use to their layout.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslLayouts = map[string]wgslLayout{
	"f32": {4, 4},
	"i32": {4, 4},
	"u32": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
}

var (
	// structBlockRegex captures the name and body of a struct declaration
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex captures the name and type of a plain struct member. Members carrying layout
	// attributes (@align, @size) do not match and make the struct unresolvable.
	memberRegex = regexp.MustCompile(`^(\w+)\s*:\s*(.+)$`)

	// uniformDeclRegex captures group, binding, variable name and type of a uniform declaration:
	// @group(0) @binding(0) var<uniform> portal: PortalParams;
	uniformDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var<\s*uniform\s*>\s+(\w+)\s*:\s*(\w+)\s*;`)
)

// ReflectUniformBlocks finds every uniform buffer declaration in a WGSL source and computes the
// layout of the struct it is bound to. Declarations whose struct is missing or uses a type
// outside the supported set are left out.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []UniformBlock: the resolvable blocks in declaration order
func ReflectUniformBlocks(source string) []UniformBlock {
	cleaned := stripComments(source)

	structs := make(map[string]string)
	for _, m := range structBlockRegex.FindAllStringSubmatch(cleaned, -1) {
		structs[m[1]] = m[2]
	}

	var blocks []UniformBlock
	for _, m := range uniformDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		body, ok := structs[m[4]]
		if !ok {
			continue
		}
		members, size, ok := layoutStruct(body)
		if !ok {
			continue
		}
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		blocks = append(blocks, UniformBlock{
			Group:   group,
			Binding: binding,
			Var:     m[3],
			Struct:  m[4],
			Members: members,
			Size:    size,
		})
	}
	return blocks
}

// FindUniformBlock looks up the uniform block a program binds at group/binding, checking the
// vertex stage first and then the fragment stage.
//
// Parameters:
//   - program: the compiled program whose sources are searched
//   - group: the bind group index
//   - binding: the binding index
//
// Returns:
//   - UniformBlock: the block
//   - bool: false if neither stage declares a resolvable block there
func FindUniformBlock(program Program, group, binding int) (UniformBlock, bool) {
	if program == nil {
		return UniformBlock{}, false
	}
	for _, stage := range []Stage{StageVertex, StageFragment} {
		for _, b := range ReflectUniformBlocks(program.Source(stage)) {
			if b.Group == group && b.Binding == binding {
				return b, true
			}
		}
	}
	return UniformBlock{}, false
}

// layoutStruct places each member at its aligned offset and rounds the struct size up to 16,
// the uniform address space struct alignment.
func layoutStruct(body string) ([]UniformMember, int, bool) {
	var members []UniformMember
	offset := 0
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := memberRegex.FindStringSubmatch(part)
		if m == nil {
			return nil, 0, false
		}
		typeName := strings.Join(strings.Fields(m[2]), "")
		layout, ok := wgslLayouts[typeName]
		if !ok {
			return nil, 0, false
		}
		offset = alignUp(offset, layout.align)
		members = append(members, UniformMember{Name: m[1], Type: typeName, Offset: offset, Size: layout.size})
		offset += layout.size
	}
	if len(members) == 0 {
		return nil, 0, false
	}
	return members, alignUp(offset, 16), true
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// stripComments removes line and block comments, block comments nesting as WGSL allows.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
