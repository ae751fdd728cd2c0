// Package errors provides structured error types for the PDF binding.
//
// Errors carry a Phase (which operation failed) and a Kind (the failure
// category from the engine's error taxonomy). Two errors match under
// errors.Is when both fields agree, so callers can test for categories
// without string comparison:
//
//	doc, err := core.OpenDocument(ctx, f)
//	if errors.Is(err, &pdferrors.Error{Phase: pdferrors.PhaseOpen, Kind: pdferrors.KindPassword}) {
//	    // prompt for a password
//	}
//
// FromCode translates the engine's numeric last-error codes into typed
// failures with human-readable descriptions.
package errors
