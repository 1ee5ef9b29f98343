package domain

// Story is the core entity: one self-post collected from a ranked listing.
// Hook is absent until the annotation stage succeeds for this story.
type Story struct {
	ID        string `json:"id"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Hook      string `json:"hook,omitempty"`
}

// HasHook reports whether the annotation stage produced a hook for this story.
func (s Story) HasHook() bool {
	return s.Hook != ""
}

// AudioSegment is one unit of synthesis output: float samples at the engine's
// source rate plus opaque progress counters used only for logging.
type AudioSegment struct {
	Samples     []float64
	GlobalStep  int
	PhonemeStep int
}
