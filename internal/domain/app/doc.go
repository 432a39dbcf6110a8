// Package app defines the hosted-app contract and the lifecycle
// manager that enforces it: one active instance at a time, tick
// budgets with hang escalation, panic containment, and graceful stop
// with a force-kill grace timeout.
package app
