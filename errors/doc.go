// Package errors provides structured error types for the jaot compiler front end.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: the class being processed, a path inside it,
// the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Class("com/example/Main").
//		Path("methods", "main").
//		Detail("code length %d exceeds attribute", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Unsupported(errors.PhaseBytecode, "opcode 0xca")
//	err := errors.NotFound(errors.PhaseLoad, "class", "java/lang/Object")
//
// Every Kind belongs to one Category (format, unsupported, lookup, configuration)
// which is what the command line reports to the user.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
