package stream

import "github.com/san-kum/firesim/internal/grid"

// Kind discriminates the messages a tailer emits.
type Kind int

const (
	KindMetadata Kind = iota + 1
	KindFrame
	KindEnded
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindFrame:
		return "frame"
	case KindEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Message is one event on the frame channel. Gen identifies the run that
// produced it so a consumer can drop leftovers from a replaced run.
type Message struct {
	Kind  Kind
	Gen   uint64
	Meta  grid.Metadata
	Frame grid.Frame
	// Seq is the 1-based position of a frame within its run.
	Seq int
}

// Sink receives messages from a producer. Send must not block.
type Sink interface {
	Send(Message)
}
