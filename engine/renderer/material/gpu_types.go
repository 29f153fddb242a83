package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPortalParamsSource is the canonical WGSL definition of the PortalParams struct.
// Matches GPUPortalParams layout exactly (48 bytes, std140 aligned).
//
//go:embed assets/portal_params.wgsl
var GPUPortalParamsSource string

//go:embed assets/portal_vertex.wgsl
var portalVertexBody string

//go:embed assets/portal_fragment.wgsl
var portalFragmentBody string

// PortalVertexSource is the complete WGSL vertex stage for the portal surface.
var PortalVertexSource = GPUPortalParamsSource + "\n" + portalVertexBody

// PortalFragmentSource is the complete WGSL fragment stage for the portal surface.
var PortalFragmentSource = GPUPortalParamsSource + "\n" + portalFragmentBody

// GPUPortalParams is the GPU-aligned uniform block for the portal shaders.
// Matches the WGSL PortalParams struct layout exactly (see GPUPortalParamsSource).
// Size: 48 bytes (vec3 members align to 16).
type GPUPortalParams struct {
	Time       float32    // offset 0: accumulated seconds
	_          [3]float32 // offset 4: padding up to the vec3 alignment
	ColorStart [3]float32 // offset 16: gradient start color
	_          float32    // offset 28: padding
	ColorEnd   [3]float32 // offset 32: gradient end color
	_          float32    // offset 44: struct tail padding
}

// Size returns the size of the GPUPortalParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUPortalParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPortalParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUPortalParams) Marshal() []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Time))
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[16+i*4:20+i*4], math.Float32bits(g.ColorStart[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:36+i*4], math.Float32bits(g.ColorEnd[i]))
	}
	return buf
}
