package models

import (
	"encoding/json"
	"fmt"
)

// Direction is a navigation direction for queue and temporary-content cursors.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionNext || d == DirectionPrev
}

// PresentationState is the single server-owned source of truth for what is
// on screen right now. Exactly one instance exists per server process; all
// mutation goes through the presentation service.
//
// isHidden suppresses rendering without discarding the cursors, so a later
// show restores the exact prior content. When temporaryContent is set it
// always wins over the queue cursor for rendering.
type PresentationState struct {
	IsPresenting       bool              `json:"isPresenting"`
	IsHidden           bool              `json:"isHidden"`
	CurrentQueueItemID *string           `json:"currentQueueItemId"`
	CurrentSongSlideID *string           `json:"currentSongSlideId"`
	LastSongSlideID    *string           `json:"lastSongSlideId"`
	TemporaryContent   *TemporaryContent `json:"temporaryContent"`
	UpdatedAt          int64             `json:"updatedAt"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the live state to mutation.
func (s *PresentationState) Clone() *PresentationState {
	out := *s
	out.CurrentQueueItemID = cloneStringPtr(s.CurrentQueueItemID)
	out.CurrentSongSlideID = cloneStringPtr(s.CurrentSongSlideID)
	out.LastSongSlideID = cloneStringPtr(s.LastSongSlideID)
	if s.TemporaryContent != nil {
		out.TemporaryContent = s.TemporaryContent.Clone()
	}
	return &out
}

// HasContent reports whether anything is selected for rendering, either a
// queue cursor or temporary content.
func (s *PresentationState) HasContent() bool {
	return s.TemporaryContent != nil || s.CurrentQueueItemID != nil || s.LastSongSlideID != nil
}

// TemporaryContentType tags the temporary-content union.
type TemporaryContentType string

const (
	TemporaryTypeSong  TemporaryContentType = "song"
	TemporaryTypeBible TemporaryContentType = "bible"
)

// TemporaryContent is an ad-hoc content override that bypasses the queue.
// It is a tagged union: exactly one of Song or Bible is set, matching Type.
// On the wire it serializes as {"type": ..., "data": ...}.
type TemporaryContent struct {
	Type  TemporaryContentType
	Song  *TemporarySongContent
	Bible *TemporaryBibleContent
}

type temporaryContentWire struct {
	Type TemporaryContentType `json:"type"`
	Data json.RawMessage      `json:"data"`
}

// MarshalJSON writes the {"type", "data"} envelope.
func (t *TemporaryContent) MarshalJSON() ([]byte, error) {
	var data interface{}
	switch t.Type {
	case TemporaryTypeSong:
		data = t.Song
	case TemporaryTypeBible:
		data = t.Bible
	default:
		return nil, fmt.Errorf("unknown temporary content type %q", t.Type)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(temporaryContentWire{Type: t.Type, Data: raw})
}

// UnmarshalJSON reads the {"type", "data"} envelope into the matching variant.
func (t *TemporaryContent) UnmarshalJSON(b []byte) error {
	var wire temporaryContentWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	t.Type = wire.Type
	t.Song = nil
	t.Bible = nil
	switch wire.Type {
	case TemporaryTypeSong:
		t.Song = &TemporarySongContent{}
		return json.Unmarshal(wire.Data, t.Song)
	case TemporaryTypeBible:
		t.Bible = &TemporaryBibleContent{}
		return json.Unmarshal(wire.Data, t.Bible)
	default:
		return fmt.Errorf("unknown temporary content type %q", wire.Type)
	}
}

// Clone returns a deep copy.
func (t *TemporaryContent) Clone() *TemporaryContent {
	out := &TemporaryContent{Type: t.Type}
	if t.Song != nil {
		song := *t.Song
		song.Slides = make([]TemporarySlide, len(t.Song.Slides))
		copy(song.Slides, t.Song.Slides)
		out.Song = &song
	}
	if t.Bible != nil {
		bible := *t.Bible
		out.Bible = &bible
	}
	return out
}

// TemporarySlide is one slide inside a denormalized temporary-song snapshot.
// Label is always set: assignment runs at snapshot time for slides the author
// left unlabeled.
type TemporarySlide struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Label     string `json:"label"`
	SortOrder int    `json:"sortOrder"`
}

// TemporarySongContent is a fully denormalized snapshot of a song taken at
// presentation time, so edits to the underlying song never retroactively
// change what is on screen.
type TemporarySongContent struct {
	SongID            string           `json:"songId"`
	Title             string           `json:"title"`
	Slides            []TemporarySlide `json:"slides"`
	CurrentSlideIndex int              `json:"currentSlideIndex"`
}

// TemporaryBibleContent carries a verse identity plus denormalized display
// text, with an optional secondary-translation overlay for side-by-side
// display. Navigation replaces the whole struct with a freshly derived one.
type TemporaryBibleContent struct {
	VerseID                          string  `json:"verseId"`
	TranslationID                    string  `json:"translationId"`
	BookID                           string  `json:"bookId"`
	BookCode                         string  `json:"bookCode"`
	Chapter                          int     `json:"chapter"`
	CurrentVerseIndex                int     `json:"currentVerseIndex"`
	Reference                        string  `json:"reference"`
	Text                             string  `json:"text"`
	BookName                         string  `json:"bookName"`
	TranslationAbbreviation          string  `json:"translationAbbreviation"`
	SecondaryTranslationID           *string `json:"secondaryTranslationId,omitempty"`
	SecondaryText                    *string `json:"secondaryText,omitempty"`
	SecondaryTranslationAbbreviation *string `json:"secondaryTranslationAbbreviation,omitempty"`
}

// NavigateTemporaryInput is the request shape for navigating inside
// temporary content. RequestTimestamp is the client-side issue time in Unix
// milliseconds; requests older than the applied state are dropped.
type NavigateTemporaryInput struct {
	Direction        Direction `json:"direction"`
	RequestTimestamp int64     `json:"requestTimestamp"`
}

// NavigateQueueInput is the request shape for queue navigation.
type NavigateQueueInput struct {
	Direction Direction `json:"direction"`
}

// PresentSongInput is the request shape for presenting an ad-hoc song.
type PresentSongInput struct {
	SongID     string `json:"songId"`
	SlideIndex *int   `json:"slideIndex,omitempty"`
}

// PresentBibleInput is the request shape for presenting a verse.
type PresentBibleInput struct {
	TranslationID          string  `json:"translationId"`
	BookID                 string  `json:"bookId"`
	Chapter                int     `json:"chapter"`
	VerseIndex             int     `json:"verseIndex"`
	SecondaryTranslationID *string `json:"secondaryTranslationId,omitempty"`
}

// UpdateStateInput is the partial-update shape for PUT state. Only non-nil
// fields are applied; referenced IDs are validated before any write.
type UpdateStateInput struct {
	IsPresenting       *bool   `json:"isPresenting,omitempty"`
	IsHidden           *bool   `json:"isHidden,omitempty"`
	CurrentQueueItemID *string `json:"currentQueueItemId,omitempty"`
	CurrentSongSlideID *string `json:"currentSongSlideId,omitempty"`
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
