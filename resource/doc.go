// Package resource implements the owning handle registry backing the
// public document and page handles.
//
// The native engine traffics in raw pointers; the host API does not.
// Every engine-owned object crosses the API boundary as a Table handle,
// and the table owns the mapping back to the internal resource. Removing
// a handle runs the resource's Drop exactly once, which is what makes
// close-exactly-once contracts enforceable.
package resource
