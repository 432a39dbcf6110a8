// Package launcher holds the top-level state machine: Booting, Menu,
// RunningApp, ErrorRecovering, Rescue.
//
// The machine is a single owned value driven by the scheduler;
// transitions are the only legal way to change which component holds
// input focus. Rescue is terminal for the process lifetime.
package launcher
