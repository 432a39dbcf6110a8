// Package menu implements the carousel app picker: the selected label
// large in the middle, neighbors dimmed above and below, a clock in
// the corner, and transient status toasts for faults. Selection is
// retained while an app runs and restored on return.
package menu
