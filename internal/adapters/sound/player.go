package sound

import (
	"fmt"
	"io"
	"os"

	"tomat/internal/logging"
	"tomat/internal/ports"
)

// Options configures the player
type Options struct {
	Files      map[string]string // custom sound file per event type
	SystemBeep bool
	Volume     float64 // 0.0 - 1.0
}

// Player implements ports.SoundPlayer
type Player struct {
	bell io.Writer
	opts Options
}

// Compile-time interface verification
var _ ports.SoundPlayer = (*Player)(nil)

// NewPlayer creates a new sound player
func NewPlayer(opts Options) *Player {
	return &Player{bell: os.Stdout, opts: opts}
}

// PlaySound plays the default notification sound
func (p *Player) PlaySound() error {
	return p.PlaySoundForEvent(ports.SoundWorkToBreak)
}

// PlaySoundForEvent plays different sounds based on the event type.
// Platform-specific implementations are in player_*.go files with build tags.
func (p *Player) PlaySoundForEvent(eventType string) error {
	if p.opts.SystemBeep {
		return p.terminalBell()
	}

	if file := p.opts.Files[eventType]; file != "" {
		if err := playFile(file, p.opts.Volume); err == nil {
			return nil
		} else {
			logging.Logger.Warn("Custom sound failed, using default", "file", file, "error", err)
		}
	}

	if playForEvent(eventType, p.opts.Volume) {
		return nil
	}
	return p.terminalBell()
}

// terminalBell outputs a terminal bell character as fallback
func (p *Player) terminalBell() error {
	_, err := fmt.Fprint(p.bell, "\a")
	return err
}
