// Package format renders timer status for status bars.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"tomat/internal/domain"
)

// Kind selects an output variant
type Kind string

const (
	KindI3Status Kind = "i3status-rs"
	KindPlain    Kind = "plain"
	KindWaybar   Kind = "waybar"
)

// Kinds lists the supported variants, default first
func Kinds() []Kind {
	return []Kind{KindWaybar, KindPlain, KindI3Status}
}

// ParseKind maps an output name to a Kind. Empty selects waybar.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindWaybar:
		return KindWaybar, nil
	case KindPlain:
		return KindPlain, nil
	case KindI3Status, "i3status":
		return KindI3Status, nil
	}
	return "", fmt.Errorf("unknown output %q (expected waybar, plain or i3status-rs)", s)
}

// Output is a rendered status. The set of implementations is closed.
type Output interface {
	json.Marshaler
	fmt.Stringer
	output()
}

// WaybarOutput is the JSON object waybar's custom module reads
type WaybarOutput struct {
	Class      string  `json:"class"`
	Percentage float64 `json:"percentage"`
	Text       string  `json:"text"`
	Tooltip    string  `json:"tooltip"`
}

// PlainOutput is a bare text line
type PlainOutput string

// I3StatusOutput is the JSON object i3status-rs's custom block reads
type I3StatusOutput struct {
	Icon      string `json:"icon,omitempty"`
	ShortText string `json:"short_text"`
	State     string `json:"state"`
	Text      string `json:"text"`
}

func (WaybarOutput) output()   {}
func (PlainOutput) output()    {}
func (I3StatusOutput) output() {}

// MarshalJSON encodes the waybar object
func (o WaybarOutput) MarshalJSON() ([]byte, error) {
	type plain WaybarOutput
	return json.Marshal(plain(o))
}

// String returns the JSON line waybar expects
func (o WaybarOutput) String() string { return jsonString(o) }

// MarshalJSON encodes the text as a JSON string
func (o PlainOutput) MarshalJSON() ([]byte, error) { return json.Marshal(string(o)) }

// String returns the text
func (o PlainOutput) String() string { return string(o) }

// MarshalJSON encodes the i3status-rs object
func (o I3StatusOutput) MarshalJSON() ([]byte, error) {
	type plain I3StatusOutput
	return json.Marshal(plain(o))
}

// String returns the JSON line i3status-rs expects
func (o I3StatusOutput) String() string { return jsonString(o) }

func jsonString(v json.Marshaler) string {
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// Render formats status as kind using the text template.
// A nil status renders the idle placeholder.
func Render(kind Kind, status *domain.Status, template string) Output {
	f := FieldsFor(status)
	text := Apply(template, f)

	switch kind {
	case KindPlain:
		return PlainOutput(text)
	case KindI3Status:
		return I3StatusOutput{
			ShortText: text,
			State:     f.i3State,
			Text:      text,
		}
	default:
		return WaybarOutput{
			Class:      f.class,
			Percentage: f.percentage,
			Text:       text,
			Tooltip:    f.tooltip,
		}
	}
}

// Fields are the values substituted into a text template
type Fields struct {
	Icon    string
	Phase   string
	Session string
	State   string
	Time    string

	class      string
	i3State    string
	percentage float64
	tooltip    string
}

// Apply substitutes {icon} {time} {state} {phase} {session} in template
func Apply(template string, f Fields) string {
	text := strings.NewReplacer(
		"{icon}", f.Icon,
		"{time}", f.Time,
		"{state}", f.State,
		"{phase}", f.Phase,
		"{session}", f.Session,
	).Replace(template)
	return strings.TrimSpace(text)
}

// FieldsFor derives the template values from a status snapshot
func FieldsFor(status *domain.Status) Fields {
	if status == nil {
		return Fields{
			Icon:    Icon(domain.PhaseWork),
			Phase:   "Idle",
			Time:    "--:--",
			class:   "idle",
			i3State: "Idle",
			tooltip: "No active session",
		}
	}

	f := Fields{
		Icon:  Icon(status.Phase),
		Phase: status.Phase.DisplayName(),
		State: "▶",
		Time:  Clock(status.RemainingSeconds),
		class: cssClass(status.Phase),
	}

	var sessionInfo string
	if status.Phase == domain.PhaseWork {
		f.Session = fmt.Sprintf("%d/%d", status.SessionCount, status.SessionsUntilLongBreak)
		sessionInfo = " (" + f.Session + ")"
	}

	minutes := float64(status.DurationSeconds) / 60
	f.tooltip = fmt.Sprintf("%s%s - %.1fmin", f.Phase, sessionInfo, minutes)

	switch {
	case status.IsPaused:
		f.State = "⏸"
		f.class += "-paused"
		f.i3State = "Info"
		f.tooltip += " (Paused)"
	case status.Phase == domain.PhaseWork:
		f.i3State = "Critical"
	default:
		f.i3State = "Good"
	}

	if !status.IsPaused && status.DurationSeconds > 0 {
		f.percentage = float64(status.ElapsedSeconds()) / float64(status.DurationSeconds) * 100
	}
	return f
}

// Icon returns the emoji for a phase
func Icon(p domain.Phase) string {
	switch p {
	case domain.PhaseBreak:
		return "☕"
	case domain.PhaseLongBreak:
		return "🏖️"
	default:
		return "🍅"
	}
}

// Clock formats seconds as MM:SS
func Clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func cssClass(p domain.Phase) string {
	if p == domain.PhaseLongBreak {
		return "long-break"
	}
	return string(p)
}
