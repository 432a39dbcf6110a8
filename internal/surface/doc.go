// Package surface provides the fixed-resolution frame buffer abstraction
// between the launcher core and the external display driver.
//
// The surface owns two frame buffers. Commit validates the incoming
// frame against the configured resolution, copies it into the back
// buffer, swaps, and hands the new front buffer to the driver. The
// previously displayed frame stays intact until the swap completes, so
// a partially written frame is never visible.
//
// The actual HUB75 signal generation lives behind the Driver interface;
// this package ships only a memory driver for tests and headless runs.
package surface
