// Package viz provides the live terminal launcher.
//
// The launcher is a Bubble Tea program: a form with the four launch inputs,
// a fire trigger, and a Braille canvas tracing the trajectory since the last
// shot. Stepping runs on a [sim.TickSource] in its own goroutine at a fixed
// 10 ms cadence; the view redraws from session snapshots at 30 fps.
//
// # Key Bindings
//
//	Enter/F   - Fire from the origin at the current elevation
//	Tab/Down  - Next field
//	Up        - Previous field
//	0-9 . - e - Edit the focused field
//	Backspace - Delete last character
//	Space     - Pause/Resume stepping
//	Q/Esc     - Quit
package viz
