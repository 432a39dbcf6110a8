// Package render draws text and simple widgets into frames for the
// menu pipeline and built-in apps.
//
// Text goes through a freetype face onto an offscreen RGBA canvas and
// is then thresholded onto the frame, which keeps small glyphs crisp
// on low-resolution LED panels instead of smearing them with
// antialiasing. Rescue mode deliberately does not use this package.
package render
