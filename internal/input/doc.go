// Package input normalizes controller events and routes them to the
// single component that currently holds focus.
//
// Sources (GPIO pad binding, websocket gamepad, tests) push events in;
// the scheduler polls them out once per tick and hands them to the
// focus target. Exactly one subscriber may be attached at a time; with
// no subscriber events are dropped, not queued, so input can never leak
// into an app after a focus switch.
package input
