package bind_group_provider

// BufferWrite is a packed uniform block waiting to be uploaded. Materials stage one whenever a
// uniform changed since the last flush; the renderer drains them once per frame.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
