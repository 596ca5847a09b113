// Package monty is the embedding API for the monty interpreter core, in
// the gopher-lua style: a host program parses source once into an
// Executor, then Runs it any number of times against fresh input
// bindings.
package monty

import (
	"github.com/google/uuid"

	"github.com/cortesi/monty/internal/compiler"
	"github.com/cortesi/monty/internal/prepare"
	"github.com/cortesi/monty/internal/runtime"
)

// Value is the tagged union every monty expression evaluates to. It is
// an alias for the core's own Value so embedders never need to import
// an internal package directly.
type Value = runtime.Value

// ExcKind enumerates the runtime exception kinds names.
type ExcKind = runtime.ExcKind

const (
	ValueError          = runtime.ValueError
	TypeError           = runtime.TypeError
	NameError           = runtime.NameError
	AttributeError      = runtime.AttributeError
	KeyError            = runtime.KeyError
	IndexError          = runtime.IndexError
	ZeroDivisionError   = runtime.ZeroDivisionError
	StopIteration       = runtime.StopIteration
	MemoryError         = runtime.MemoryError
	NotImplementedError = runtime.NotImplementedError
)

// ExceptionRaise is the structured payload of a Run that ended by
// raising.
type ExceptionRaise = runtime.ExceptionRaise

// InternalError marks an interpreter-bug or resource-exhaustion
// condition unrelated to user code.
type InternalError = runtime.InternalError

// ExitKind discriminates the outcome of a Run.
type ExitKind = runtime.ExitKind

const (
	ExitReturn    = runtime.ExitReturn
	ExitException = runtime.ExitException
	ExitInternal  = runtime.ExitInternal
)

// Exit is the outcome of Executor.Run: exactly one of Value, Exc, or
// Err is meaningful, discriminated by Kind.
type Exit = runtime.Exit

// Printer is the sink print() writes through. The embedder supplies
// the concrete implementation; DiscardPrinter below is the only one
// this package provides.
type Printer = runtime.Printer

// DiscardPrinter throws every print() write away.
type DiscardPrinter = runtime.DiscardPrinter

// ResourceTracker is the host-supplied allocation budget consulted on
// every heap allocation.
type ResourceTracker = runtime.ResourceTracker

// Int, Float, Bool, None and Ellipsis build the immediate Value
// variants; none of these allocate on the heap (invariant
// 4/5), so they need no Executor to construct.
func Int(i int64) Value   { return runtime.Int(i) }
func Float(f float64) Value { return runtime.Float(f) }
func Bool(b bool) Value   { return runtime.Bool(b) }

var (
	None     = runtime.None
	True     = runtime.True
	False    = runtime.False
	Ellipsis = runtime.Ellipsis
)

// ParseErrorKind distinguishes why Executor.New failed: a lexer/parser
// syntax error, or a Prepare-pass resolution failure (Todo, Parsing,
// Internal, PreEvalException, or PreEvalInternal).
type ParseErrorKind int

const (
	ParseErrorTodo ParseErrorKind = iota
	ParseErrorSyntax
	ParseErrorInternal
	ParseErrorPreEvalException
	ParseErrorPreEvalInternal
)

// ParseError is the single public failure type Executor.New returns,
// unifying the lexer/parser's syntax errors with the Prepare pass's own
// name-resolution failures — both are fatal and never surface as a
// runtime exception to the embedder.
type ParseError struct {
	Kind     ParseErrorKind
	FileName string
	Msg      string
}

func (e *ParseError) Error() string {
	prefix := e.FileName
	if prefix == "" {
		prefix = "<string>"
	}
	return prefix + ": " + e.Msg
}

func fromCompileError(fileName string, e *compiler.ParseError) *ParseError {
	kind := ParseErrorSyntax
	switch e.Kind {
	case compiler.PETodo:
		kind = ParseErrorTodo
	case compiler.PEInternal:
		kind = ParseErrorInternal
	}
	return &ParseError{Kind: kind, FileName: fileName, Msg: e.Msg}
}

func fromPrepareError(fileName string, e *prepare.Error) *ParseError {
	kind := ParseErrorPreEvalException
	if e.Kind == prepare.ErrInternal {
		kind = ParseErrorPreEvalInternal
	}
	return &ParseError{Kind: kind, FileName: fileName, Msg: e.Msg}
}

// ExecutorOption configures Executor construction, following the
// functional-options pattern common to Go embedding APIs.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	tracker ResourceTracker
	printer Printer
}

// WithResourceBudget caps the Executor at n heap allocations in total;
// freeing an object does not return budget. Once exhausted, further
// allocation raises MemoryError.
func WithResourceBudget(n int) ExecutorOption {
	return func(c *executorConfig) { c.tracker = &runtime.BudgetTracker{Remaining: n} }
}

// WithPrinter installs the sink print() writes to. The default is
// DiscardPrinter.
func WithPrinter(p Printer) ExecutorOption {
	return func(c *executorConfig) { c.printer = p }
}

// Executor is a parsed, prepared program ready to Run repeatedly. One
// Executor owns one Heap and one Interner for its entire lifetime; Run
// derives a fresh namespace from the prepared template on every call,
// but heap objects allocated by a prior Run are only released when the
// whole Executor is discarded: the heap is dropped wholesale at
// Executor destruction, not object by object.
type Executor struct {
	prepared *runtime.PreparedModule
	heap     *runtime.Heap
	printer  Printer
}

// New parses source (via the external lexer/parser) and runs the
// Prepare pass, reserving the first len(inputNames) namespace slots for
// the declared input bindings. fileName is carried only for error
// messages.
func New(source, fileName string, inputNames []string, opts ...ExecutorOption) (*Executor, *ParseError) {
	mod, perr := compiler.Parse(source)
	if perr != nil {
		return nil, fromCompileError(fileName, perr)
	}
	registry := runtime.NewRegistry()
	prepared, prepErr := prepare.Prepare(mod, inputNames, registry)
	if prepErr != nil {
		return nil, fromPrepareError(fileName, prepErr)
	}

	cfg := &executorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Executor{
		prepared: prepared,
		heap:     runtime.NewHeap(cfg.tracker),
		printer:  cfg.printer,
	}, nil
}

// InputCount reports the number of declared input names, the required
// length of every Run call's inputs slice.
func (ex *Executor) InputCount() int { return ex.prepared.InputCount }

// Int, Float, Bool, None, Str, and Bytes build Values for use as Run
// inputs. The heap-backed constructors (Str, Bytes) allocate onto this
// Executor's own heap, so their AllocError surfaces immediately rather
// than at Run time.
func (ex *Executor) Str(s string) (Value, error) {
	id, err := ex.heap.Allocate(&runtime.HeapString{Text: s})
	if err != nil {
		return Value{}, err
	}
	return runtime.Ref(id), nil
}

func (ex *Executor) Bytes(b []byte) (Value, error) {
	buf := make([]byte, len(b))
	copy(buf, b)
	id, err := ex.heap.Allocate(&runtime.HeapBytes{Data: buf})
	if err != nil {
		return Value{}, err
	}
	return runtime.Ref(id), nil
}

// Repr renders v the way the language's own repr() builtin does,
// resolving any heap reference or interned-string handle against this
// Executor's own heap and name table. Use this to echo a Run's
// Exit.Value from outside the Evaluator (a CLI or REPL).
func (ex *Executor) Repr(v Value) string {
	return runtime.Repr(v, ex.heap, ex.prepared.Interner)
}

// Display renders v the way str() does (plain strings unquoted).
func (ex *Executor) Display(v Value) string {
	return runtime.Str(v, ex.heap, ex.prepared.Interner)
}

// Run executes the prepared program once against inputs, which must
// have exactly InputCount() elements. Every Run stamps a fresh
// uuid as a correlation id, surfaced on Exception.TracebackNote and in
// Internal-error log fields.
func (ex *Executor) Run(inputs []Value) Exit {
	if len(inputs) != ex.prepared.InputCount {
		return Exit{Kind: ExitInternal, Err: &InternalError{
			Reason: "inputs length does not match declared input names",
		}}
	}
	runID := uuid.NewString()
	ex.heap.RunID = runID

	ev := runtime.NewEvaluator(ex.heap, ex.prepared.Interner, ex.prepared.Registry, ex.prepared.NumSlots, inputs, ex.printer)
	exit := ev.Run(ex.prepared.Body)
	switch exit.Kind {
	case ExitException:
		exit.Exc.TracebackNote = runID
	case ExitInternal:
		runtime.LogInternal(runID, exit.Err)
	}
	return exit
}

// Close discards the Executor's heap and prepared tree wholesale, with
// no per-object teardown attempted; the manual refcounts exist for the
// identity and release-timing invariants checked during a run, not
// for actual memory safety, which Go's collector already guarantees
// once every reference is dropped.
func (ex *Executor) Close() {
	ex.heap = nil
	ex.prepared = nil
}

// ExitCode maps an Exit to the process exit code a CLI should use:
// 0 on Return, 1 on Exception, 70 on Internal. A
// ParseError (returned by New, not Run) maps to 2.
func ExitCode(e Exit) int {
	switch e.Kind {
	case ExitReturn:
		return 0
	case ExitException:
		return 1
	default:
		return 70
	}
}

// ParseErrorExitCode is the exit code a CLI should use when Executor.New
// itself fails.
func ParseErrorExitCode(*ParseError) int { return 2 }
