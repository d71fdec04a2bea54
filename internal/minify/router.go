package minify

import (
	"path"

	"bookminify/internal/imageconv"
	"bookminify/internal/imagefile"
)

// Action is what the router decided to do with one entry.
type Action int

const (
	ActionCopy Action = iota
	ActionConvert
)

func (a Action) String() string {
	if a == ActionConvert {
		return "convert"
	}
	return "copy"
}

// Decision is the routing result for one entry. Profile is only meaningful
// for ActionConvert.
type Decision struct {
	Action  Action
	Profile imageconv.Profile
	Reason  string
}

// Router picks copy or convert, and which profile, per entry.
type Router struct {
	MinBytes  int64
	HugeBytes int64
	Huge      imageconv.Profile
	Middle    imageconv.Profile
}

// NewRouter builds a router from run settings.
func NewRouter(s Settings) Router {
	return Router{
		MinBytes:  s.MinBytes,
		HugeBytes: s.HugeBytes,
		Huge:      s.Huge,
		Middle:    s.Middle,
	}
}

// Route decides the action for an entry of the given size.
func (r Router) Route(name string, size int64) Decision {
	switch {
	case !imagefile.IsImage(name):
		return Decision{Action: ActionCopy, Reason: "not an image"}
	case imagefile.IsAnimated(name):
		return Decision{Action: ActionCopy, Reason: "animated"}
	case size < r.MinBytes:
		return Decision{Action: ActionCopy, Reason: "below minimum size"}
	case size > r.HugeBytes:
		return Decision{Action: ActionConvert, Profile: r.Huge, Reason: "above huge threshold"}
	default:
		return Decision{Action: ActionConvert, Profile: r.Middle, Reason: "middle size"}
	}
}

// OutputName is the slash-separated output path for entry. Converted entries
// keep their folder and stem but take the profile's extension.
func OutputName(entry string, d Decision) string {
	if d.Action != ActionConvert || d.Profile.DestExtension == "" {
		return entry
	}
	return path.Join(path.Dir(entry), imagefile.Stem(entry)+d.Profile.DestExtension)
}
