// Package viz animates rigid-body scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: preset menu that opens the chosen scene
//   - [Model]: live view of one scene with an energy chart and body list
//   - [Canvas]: Braille-based pixel canvas with per-cell color
//   - [Recorder]: GIF capture of the canvas
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene from its config
//	←↑↓→  - Nudge the first movable body
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	Q     - Quit
package viz
