// Package manager owns the capture/analysis pipeline: a single worker that
// analyzes the newest captured frame through a vision-language inference
// session, plus the lifecycle of that session (lazy load, teardown and
// reinitialization after failures).
//
// Frames are enqueued into a one-slot mailbox with replace-pending semantics:
// at most one analysis is in flight at a time, and a frame superseded by a
// newer one is never analyzed.
package manager
