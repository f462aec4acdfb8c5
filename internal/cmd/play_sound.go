package cmd

// PlaySoundCmd plays a transition sound
type PlaySoundCmd struct {
	Event string `arg:"" optional:"" help:"Transition to play" enum:"work-to-break,break-to-work,work-to-long-break" default:"work-to-break"`
}

// Run executes the sound playing logic
func (p *PlaySoundCmd) Run(cli *CLI) error {
	return NewSoundPlayer(cli.Settings()).PlaySoundForEvent(p.Event)
}

