package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode     Phase = "decode"     // class file structure
	PhaseDescriptor Phase = "descriptor" // field/method descriptors
	PhaseBytecode   Phase = "bytecode"   // instruction stream
	PhaseResolve    Phase = "resolve"    // constant pool resolution
	PhaseCollect    Phase = "collect"    // dependency discovery
	PhaseCodegen    Phase = "codegen"    // code generation tree
	PhaseLoad       Phase = "load"       // class path lookup
	PhaseConfig     Phase = "config"     // configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData   Kind = "invalid_data"
	KindDataSize      Kind = "data_size"
	KindUnknownTag    Kind = "unknown_tag"
	KindNotClassFile  Kind = "not_class_file"
	KindUnsupported   Kind = "unsupported"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindNilPointer    Kind = "nil_pointer"
	KindTypeMismatch  Kind = "type_mismatch"
	KindNotFound      Kind = "not_found"
	KindCycle         Kind = "cycle"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidConfig Kind = "invalid_config"
)

// Category is the coarse error class reported to users.
type Category string

const (
	CategoryFormat        Category = "format"
	CategoryUnsupported   Category = "unsupported"
	CategoryLookup        Category = "lookup"
	CategoryConfiguration Category = "configuration"
	CategoryUnknown       Category = "error"
)

// Category returns the category this kind belongs to.
func (k Kind) Category() Category {
	switch k {
	case KindInvalidData, KindDataSize, KindUnknownTag, KindNotClassFile, KindTypeMismatch, KindCycle:
		return CategoryFormat
	case KindUnsupported:
		return CategoryUnsupported
	case KindOutOfBounds, KindNilPointer, KindNotFound:
		return CategoryLookup
	case KindInvalidConfig, KindInvalidInput:
		return CategoryConfiguration
	default:
		return CategoryUnknown
	}
}

// Error is the structured error type used throughout the compiler
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Class  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Class != "" {
		b.WriteString(" in ")
		b.WriteString(e.Class)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Class sets the class being processed
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Path sets the location inside the class
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// CategoryOf returns the category of the first structured error in err's chain.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind.Category()
	}
	return CategoryUnknown
}

// WithClass annotates the first structured error in err's chain with the class
// name when none is set yet. Other errors are wrapped as invalid data.
func WithClass(err error, phase Phase, class string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		if e.Class == "" {
			e.Class = class
		}
		return err
	}
	return &Error{Phase: phase, Kind: KindInvalidData, Class: class, Cause: err}
}

// Convenience constructors for common error patterns

// InvalidData creates a malformed input error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// DataSize creates an incorrect data size error
func DataSize(phase Phase, what string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDataSize,
		Detail: fmt.Sprintf("incorrect data size for %s: want %d bytes, got %d", what, want, got),
		Value:  got,
	}
}

// Unsupported creates an unsupported feature error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates an error for a dereferenced empty slot
func NilPointer(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		Detail: fmt.Sprintf("%s is empty", what),
	}
}

// TypeMismatch creates an error for an entry of the wrong shape
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// Cycle creates a dependency cycle error
func Cycle(phase Phase, members []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCycle,
		Detail: "cycle: " + strings.Join(members, " -> "),
		Value:  members,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidConfig creates a configuration error
func InvalidConfig(phase Phase, field, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidConfig,
		Path:   []string{field},
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a class loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
