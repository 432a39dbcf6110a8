// Package sched drives the launcher: one goroutine paces ticks at the
// target frame rate, feeds input to whichever component holds focus,
// collects the rendered frame, commits it to the surface, and reacts
// to lifecycle signals by moving the state machine.
//
// Pacing is frame-period-driven: a slow tick shortens the following
// sleep and records a dropped-frame metric, it never pushes the
// schedule out. An app is never preempted mid-tick; focus changes only
// between ticks.
package sched
