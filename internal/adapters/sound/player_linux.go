//go:build linux

package sound

import (
	"fmt"
	"os/exec"

	"tomat/internal/ports"
)

const freedesktopSounds = "/usr/share/sounds/freedesktop/stereo/"

// playForEvent plays sounds on Linux using paplay (PulseAudio) or aplay (ALSA)
func playForEvent(eventType string, volume float64) bool {
	var names []string

	switch eventType {
	case ports.SoundWorkToBreak:
		names = []string{"complete", "bell"}
	case ports.SoundBreakToWork:
		names = []string{"message", "bell"}
	case ports.SoundWorkToLongBreak:
		names = []string{"alarm-clock-elapsed", "complete"}
	default:
		names = []string{"bell"}
	}

	for _, name := range names {
		if playFile(freedesktopSounds+name+".oga", volume) == nil {
			return true
		}
		if exec.Command("aplay", "-q", freedesktopSounds+name+".wav").Run() == nil {
			return true
		}
	}
	return false
}

// playFile plays a file through paplay, which understands most formats
func playFile(path string, volume float64) error {
	// paplay volume is linear, 65536 = 100%
	arg := fmt.Sprintf("--volume=%d", int(volume*65536))
	return exec.Command("paplay", arg, path).Run()
}
