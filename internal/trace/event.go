package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeSession  Scope = iota + 1 // one compilation session or CLI command
	ScopeFile                      // one input file
	ScopeResource                  // owned resource create/dispose
	ScopeCall                      // any other catalog call
)

func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopeFile:
		return "file"
	case ScopeResource:
		return "resource"
	case ScopeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // e.g. "session", "scan:foo.o", "dispose:targetdata"
	Detail   string
	Extra    map[string]string
}
