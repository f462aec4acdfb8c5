package ports

// Transition sound names, also accepted by `tomat play-sound`
const (
	SoundBreakToWork     = "break-to-work"
	SoundWorkToBreak     = "work-to-break"
	SoundWorkToLongBreak = "work-to-long-break"
)

// SoundEvents lists every transition sound
func SoundEvents() []string {
	return []string{SoundWorkToBreak, SoundBreakToWork, SoundWorkToLongBreak}
}

// SoundPlayer plays transition sounds. PlaySound plays the work-to-break
// sound and is used to check the audio setup.
type SoundPlayer interface {
	PlaySound() error
	PlaySoundForEvent(event string) error
}
