//go:build darwin

package sound

import (
	"fmt"
	"os/exec"

	"tomat/internal/ports"
)

// playForEvent plays sounds on macOS using afplay
func playForEvent(eventType string, volume float64) bool {
	var soundFiles []string

	switch eventType {
	case ports.SoundWorkToBreak:
		soundFiles = []string{"/System/Library/Sounds/Glass.aiff", "/System/Library/Sounds/Tink.aiff"}
	case ports.SoundBreakToWork:
		soundFiles = []string{"/System/Library/Sounds/Ping.aiff", "/System/Library/Sounds/Pop.aiff"}
	case ports.SoundWorkToLongBreak:
		soundFiles = []string{"/System/Library/Sounds/Submarine.aiff", "/System/Library/Sounds/Purr.aiff"}
	default:
		soundFiles = []string{"/System/Library/Sounds/Glass.aiff"}
	}

	for _, soundFile := range soundFiles {
		if playFile(soundFile, volume) == nil {
			return true
		}
	}
	return false
}

func playFile(path string, volume float64) error {
	return exec.Command("afplay", "-v", fmt.Sprintf("%.2f", volume), path).Start()
}
