// Package tool implements the editing stages of a photo session.
//
// Each stage (crop, flip, filter, effect, text) keeps its transient
// parameters in a ToolState value. The Pipeline moves through three phases:
//
//	Idle --Begin--> Active --Confirm--> Committing --> Idle
//	                Active --Cancel---> Idle
//
// Confirm renders the current version with the transform derived from the
// active ToolState, exports the result as a new version and commits it to
// the history. A failed Confirm returns the pipeline to Active with its
// ToolState intact and the history untouched. ToolState is never stored in
// the history.
package tool
