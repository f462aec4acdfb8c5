//go:build !darwin && !linux

package sound

import "errors"

// playForEvent has no native player on this platform
func playForEvent(eventType string, volume float64) bool {
	return false
}

func playFile(path string, volume float64) error {
	return errors.New("sound files are not supported on this platform")
}
