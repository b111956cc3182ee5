package value

// Header is embedded by every heap-allocated Obj variant. It carries the
// garbage collector's mark bit and the intrusive singly-linked list that
// threads every live object together, rooted at the VM.
type Header struct {
	Marked bool
	Next   Obj // next object in the VM's all-objects list
}

// Obj is implemented by every heap-allocated Value variant. GCHeader gives
// the collector uniform access to the mark bit and list link regardless of
// concrete kind.
type Obj interface {
	Value
	GCHeader() *Header
}

func (h *Header) GCHeader() *Header { return h }
