// Package input defines how synthetic key and mouse events reach the host's
// input subsystem.
package input

// Dispatcher applies synthetic input to the host exactly as the host's real
// input path would. Calls happen on the host thread.
type Dispatcher interface {
	KeyDown(keyCode int32, charCode uint32, isRepeat bool)
	KeyUp(keyCode int32, charCode uint32, isRepeat bool)
	RawMouseMove(x, y int32)
}
