// Package viz is the terminal playback UI for fire simulation runs.
//
// [Model] is a Bubble Tea program that drives a [session.Session] once per
// tick: it drains the run's frame queue, lets the playback controller move
// the cursor and renders the current grid with per-category charts.
//
// # Key Bindings
//
//	Space     - Pause/Resume playback
//	←/→       - Step back/forward one frame
//	Home/End  - Jump to the first/last frame
//	+/-       - Play faster/slower
//	N         - Start a new run
//	P / O     - Pause or step the simulation process
//	W, A/D    - Toggle wind, rotate wind
//	Z/X       - Weaken/strengthen wind
//	T         - Toggle thunder
//	C         - Toggle charts
//	Shift+T   - Cycle color themes
//	?         - Show help
package viz
