// Package viz renders trajectories for people: static charts through
// gonum/plot, terminal line charts through asciigraph and a bubbletea
// [Player] that animates the pendulum on a braille [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from frame 0
//	[ ]   - Step one frame back/forward
//	T     - Cycle color themes
//	?     - Show help
//	Q     - Quit
//
// The bob trail is a fixed-size [Trail] owned by the [Scene]; it is
// cleared whenever frame 0 is drawn.
package viz
