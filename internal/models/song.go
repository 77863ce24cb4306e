package models

// Song represents a song record.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	CCLI   string `json:"ccli,omitempty"`
}

// SongSlide is one slide of a song. Content is an HTML fragment. Label is
// either author-assigned ("V1", "C2", ...) or assigned algorithmically when
// absent.
type SongSlide struct {
	ID        string  `json:"id"`
	SongID    string  `json:"songId"`
	Content   string  `json:"content"`
	SortOrder int     `json:"sortOrder"`
	Label     *string `json:"label"`
}

// LabelOrEmpty returns the label or "" when unset.
func (s *SongSlide) LabelOrEmpty() string {
	if s.Label == nil {
		return ""
	}
	return *s.Label
}

// ExpandedSlide is a derived, ephemeral slide produced by presentation-order
// expansion. OriginalIndex points back into the sorted input; DisplayIndex is
// the position in the expanded display sequence. Never persisted.
type ExpandedSlide struct {
	SongSlide
	OriginalIndex int `json:"originalIndex"`
	DisplayIndex  int `json:"displayIndex"`
}
