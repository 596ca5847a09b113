package runtime

// ExcKind enumerates the RuntimeException kinds. The core has no
// user-defined classes, so an exception is just a kind tag plus an
// optional message — hashable and comparable by value.
type ExcKind uint8

const (
	ValueError ExcKind = iota
	TypeError
	NameError
	AttributeError
	KeyError
	IndexError
	ZeroDivisionError
	StopIteration
	MemoryError
	NotImplementedError
)

func (k ExcKind) String() string {
	switch k {
	case ValueError:
		return "ValueError"
	case TypeError:
		return "TypeError"
	case NameError:
		return "NameError"
	case AttributeError:
		return "AttributeError"
	case KeyError:
		return "KeyError"
	case IndexError:
		return "IndexError"
	case ZeroDivisionError:
		return "ZeroDivisionError"
	case StopIteration:
		return "StopIteration"
	case MemoryError:
		return "MemoryError"
	case NotImplementedError:
		return "NotImplementedError"
	default:
		return "Exception"
	}
}

// ExceptionRaise is the structured payload of Exit's Exception variant:
// the offending kind, a human-readable message, and — set
// by Executor.Run, not by the evaluator itself — a traceback note
// carrying the run's correlation id.
type ExceptionRaise struct {
	Kind          ExcKind
	Message       string
	TracebackNote string
}

func (e *ExceptionRaise) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// InternalError marks an interpreter-bug or resource-exhaustion
// condition unrelated to user code: a refcount underflow,
// a use of a stale ObjectID, or anything else that should never happen
// for well-formed callers. It never wraps a RuntimeException.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string { return "internal error: " + e.Reason }
