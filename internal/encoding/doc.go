// Package encoding assembles captured PNG frames into an animated GIF.
//
// Frames are decoded in the order given, fitted onto a square canvas,
// reduced to a 256-color palette with a median-cut quantizer and dithered
// with Floyd-Steinberg. The GIF loops forever and every frame carries the
// capture cadence as its delay. EncodeFile writes through a temporary file so
// a failed encode never leaves a finished-looking .gif behind.
package encoding
