package display

import "github.com/cantor-app/cantor/internal/hymn"

// Descriptor describes a connected secondary output. Opaque to callers;
// the state machine only passes it through to the surface.
type Descriptor struct {
	Name   string
	Width  int
	Height int
}

// Surface is the single exclusively-owned output resource.
// It is created in connect paths and torn down only on disconnect; every
// other operation mutates its content, never its lifecycle. That is what
// keeps hymn switches seamless.
type Surface interface {
	Open(d Descriptor) error
	SetSlide(s hymn.Slide) error
	SetBackground(image string) error
	Clear() error
	Close() error
}
