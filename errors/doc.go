// Package errors provides structured error types for the elf-notes module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a location path, a detail message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Path(".note.gnu.build-id", "0").
//		Detail("unexpected owner %q", owner).
//		Build()
//
// Note records whose declared lengths overrun the available bytes are reported
// as *TruncatedRecordError, which names the field and both lengths:
//
//	var tr *errors.TruncatedRecordError
//	if errors.As(err, &tr) {
//		fmt.Println(tr.Field, tr.Expected, tr.Actual)
//	}
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
