// Package player injects keystrokes into the media-player window.
package player

// Player injects key presses into the media player. Invoked from the
// router and from special-action bodies; implementations record their
// own failures, which never stop the pipeline.
type Player interface {
	// SendKey presses key in the player window.
	SendKey(key string) error
}

// Keys the station's player binds in its input configuration.
const (
	KeyPlayPause     = "space"
	KeyVolumeUp      = "0"
	KeyVolumeDown    = "9"
	KeyMute          = "m"
	KeyOK            = "Return"
	KeyNextEffect    = "c"
	KeyPrevEffect    = "z"
	KeyPartyOverlay  = "b"
	KeyClearOverlays = "h"
	KeyCrossfade     = "d"
)
