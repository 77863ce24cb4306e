package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"church-hub/internal/models"
	"church-hub/internal/slides"
)

// SongProvider resolves songs and slides for denormalization and navigation.
type SongProvider interface {
	GetSong(id string) (*models.Song, error)
	GetSlides(songID string) ([]models.SongSlide, error)
	GetSlide(id string) (*models.SongSlide, error)
}

// QueueProvider resolves queue items for cross-item navigation.
type QueueProvider interface {
	GetItem(id string) (*models.QueueItem, error)
	AdjacentItem(currentID string, direction models.Direction) (*models.QueueItem, error)
}

// BibleProvider resolves verses for temporary bible content.
type BibleProvider interface {
	GetVerse(id string) (*models.Verse, error)
	FindVerse(translationID, bookID string, chapter, verseNumber int) (*models.Verse, error)
	AdjacentVerse(v *models.Verse, direction models.Direction) (*models.Verse, error)
}

// StatePublisher receives a snapshot after every applied mutation.
type StatePublisher interface {
	BroadcastState(state *models.PresentationState)
}

// PresentationService owns the one PresentationState of the server process
// and applies all mutations to it. Every other component sees snapshots
// only. One mutex serializes mutation handlers end to end, so a handler
// never observes another handler's half-applied work; prerequisite reads
// (song slides, verses) happen before the lock is taken and are validated
// against the state afterwards.
//
// Every successful mutation bumps UpdatedAt (strictly monotonic) and pushes
// a full snapshot to the publisher. Snapshots, not diffs: a client is
// consistent after any single message.
type PresentationService struct {
	mu        sync.Mutex
	state     *models.PresentationState
	songs     SongProvider
	queue     QueueProvider
	bible     BibleProvider
	publisher StatePublisher
	now       func() time.Time
}

// NewPresentationService creates the service around an initial blank state.
func NewPresentationService(songs SongProvider, queue QueueProvider, bible BibleProvider) *PresentationService {
	return &PresentationService{
		state: &models.PresentationState{},
		songs: songs,
		queue: queue,
		bible: bible,
		now:   time.Now,
	}
}

// SetPublisher attaches the fan-out channel. Must be called before serving.
func (ps *PresentationService) SetPublisher(p StatePublisher) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.publisher = p
}

// State returns a snapshot of the current state.
func (ps *PresentationService) State() *models.PresentationState {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.state.Clone()
}

// touch advances UpdatedAt strictly monotonically. Must be called with the
// lock held, after the mutation is applied.
func (ps *PresentationService) touch() {
	ts := ps.now().UnixMilli()
	if ts <= ps.state.UpdatedAt {
		ts = ps.state.UpdatedAt + 1
	}
	ps.state.UpdatedAt = ts
}

// commit touches the state and publishes a snapshot. Must be called with the
// lock held. Returns the snapshot for the caller's response.
func (ps *PresentationService) commit() *models.PresentationState {
	ps.touch()
	snapshot := ps.state.Clone()
	if ps.publisher != nil {
		ps.publisher.BroadcastState(snapshot)
	}
	return snapshot
}

// ShowSlide unhides the screen when any content is selected. Never changes
// content identity. With nothing to show it still bumps UpdatedAt.
func (ps *PresentationService) ShowSlide() (*models.PresentationState, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.state.HasContent() {
		ps.state.IsHidden = false
		ps.state.IsPresenting = true
		if ps.state.CurrentSongSlideID == nil && ps.state.LastSongSlideID != nil {
			ps.state.CurrentSongSlideID = ps.state.LastSongSlideID
		}
	}
	return ps.commit(), nil
}

// ClearSlide blanks the screen without losing place: cursors survive so a
// later ShowSlide restores the exact prior content.
func (ps *PresentationService) ClearSlide() (*models.PresentationState, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.state.IsHidden = true
	return ps.commit(), nil
}

// Stop resets the state to its initial blank form.
func (ps *PresentationService) Stop() (*models.PresentationState, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	prev := ps.state.UpdatedAt
	ps.state = &models.PresentationState{UpdatedAt: prev}
	return ps.commit(), nil
}

// UpdateState applies a partial cursor/visibility update. All referenced IDs
// are validated before anything is written (all-or-nothing).
func (ps *PresentationService) UpdateState(input models.UpdateStateInput) (*models.PresentationState, error) {
	if input.CurrentQueueItemID != nil {
		if _, err := ps.queue.GetItem(*input.CurrentQueueItemID); err != nil {
			return nil, err
		}
	}
	if input.CurrentSongSlideID != nil {
		if _, err := ps.songs.GetSlide(*input.CurrentSongSlideID); err != nil {
			return nil, err
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if input.IsPresenting != nil {
		ps.state.IsPresenting = *input.IsPresenting
	}
	if input.IsHidden != nil {
		ps.state.IsHidden = *input.IsHidden
	}
	if input.CurrentQueueItemID != nil {
		id := *input.CurrentQueueItemID
		ps.state.CurrentQueueItemID = &id
	}
	if input.CurrentSongSlideID != nil {
		id := *input.CurrentSongSlideID
		ps.state.CurrentSongSlideID = &id
		last := id
		ps.state.LastSongSlideID = &last
	}
	return ps.commit(), nil
}

// NavigateQueue moves the slide cursor within the active song, crossing to
// the adjacent queue item at song edges. Returns ErrNoContent when nothing
// is active or the queue edge is reached.
//
// The cursor walks the original sort order. The chorus-expanded display
// sequence repeats slide IDs, which an ID-valued cursor cannot address;
// expansion stays a rendering and export concern.
func (ps *PresentationService) NavigateQueue(direction models.Direction) (*models.PresentationState, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("invalid direction %q", direction)
	}

	snapshot := ps.State()
	if snapshot.CurrentQueueItemID == nil {
		return nil, ErrNoContent
	}

	item, err := ps.queue.GetItem(*snapshot.CurrentQueueItemID)
	if err != nil {
		return nil, err
	}

	// Resolve the target cursor outside the lock, then re-validate under it.
	target, err := ps.resolveQueueTarget(snapshot, item, direction)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	// Another mutation may have replaced the queue cursor during our reads;
	// applying a stale target would navigate the wrong item.
	if ps.state.CurrentQueueItemID == nil || *ps.state.CurrentQueueItemID != item.ID {
		log.Printf("Queue navigation superseded: cursor moved during resolve")
		return ps.state.Clone(), nil
	}

	ps.state.CurrentQueueItemID = &target.itemID
	ps.state.CurrentSongSlideID = target.slideID
	if target.slideID != nil {
		last := *target.slideID
		ps.state.LastSongSlideID = &last
	}
	ps.state.IsPresenting = true
	return ps.commit(), nil
}

type queueTarget struct {
	itemID  string
	slideID *string
}

func (ps *PresentationService) resolveQueueTarget(snapshot *models.PresentationState, item *models.QueueItem, direction models.Direction) (*queueTarget, error) {
	if item.Type == models.QueueItemSong && item.SongID != nil {
		songSlides, err := ps.songs.GetSlides(*item.SongID)
		if err != nil {
			return nil, err
		}
		if len(songSlides) > 0 {
			idx := slideIndex(songSlides, snapshot.CurrentSongSlideID)
			if direction == models.DirectionNext && idx+1 < len(songSlides) {
				return &queueTarget{itemID: item.ID, slideID: &songSlides[idx+1].ID}, nil
			}
			if direction == models.DirectionPrev && idx > 0 {
				return &queueTarget{itemID: item.ID, slideID: &songSlides[idx-1].ID}, nil
			}
		}
	}

	// Song edge, or a non-song item: cross to the adjacent queue item.
	next, err := ps.queue.AdjacentItem(item.ID, direction)
	if err != nil {
		return nil, err
	}
	target := &queueTarget{itemID: next.ID}
	if next.Type == models.QueueItemSong && next.SongID != nil {
		songSlides, err := ps.songs.GetSlides(*next.SongID)
		if err != nil {
			return nil, err
		}
		if len(songSlides) > 0 {
			// Enter a song at the near edge for the travel direction.
			if direction == models.DirectionNext {
				target.slideID = &songSlides[0].ID
			} else {
				target.slideID = &songSlides[len(songSlides)-1].ID
			}
		}
	}
	return target, nil
}

func slideIndex(songSlides []models.SongSlide, id *string) int {
	if id == nil {
		return 0
	}
	for i := range songSlides {
		if songSlides[i].ID == *id {
			return i
		}
	}
	return 0
}

// PresentTemporarySong snapshots the song's slides into temporary content
// and unhides the screen. The snapshot is fully denormalized so later edits
// to the song never change what is live.
func (ps *PresentationService) PresentTemporarySong(input models.PresentSongInput) (*models.PresentationState, error) {
	song, err := ps.songs.GetSong(input.SongID)
	if err != nil {
		return nil, err
	}
	songSlides, err := ps.songs.GetSlides(song.ID)
	if err != nil {
		return nil, err
	}

	labeled := slides.AssignLabels(songSlides)
	snapshotSlides := make([]models.TemporarySlide, len(labeled))
	for i, s := range labeled {
		snapshotSlides[i] = models.TemporarySlide{ID: s.ID, Content: s.Content, Label: s.LabelOrEmpty(), SortOrder: i}
	}

	index := 0
	if input.SlideIndex != nil {
		if *input.SlideIndex < 0 || *input.SlideIndex >= len(snapshotSlides) {
			return nil, fmt.Errorf("slide index %d out of range for song %q", *input.SlideIndex, song.ID)
		}
		index = *input.SlideIndex
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.state.TemporaryContent = &models.TemporaryContent{
		Type: models.TemporaryTypeSong,
		Song: &models.TemporarySongContent{
			SongID:            song.ID,
			Title:             song.Title,
			Slides:            snapshotSlides,
			CurrentSlideIndex: index,
		},
	}
	ps.state.IsHidden = false
	ps.state.IsPresenting = true
	return ps.commit(), nil
}

// PresentTemporaryBible presents one verse as temporary content, with an
// optional secondary translation for side-by-side display.
func (ps *PresentationService) PresentTemporaryBible(input models.PresentBibleInput) (*models.PresentationState, error) {
	verse, err := ps.bible.FindVerse(input.TranslationID, input.BookID, input.Chapter, input.VerseIndex)
	if err != nil {
		return nil, err
	}

	content, err := ps.bibleContent(verse, input.SecondaryTranslationID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.state.TemporaryContent = &models.TemporaryContent{
		Type:  models.TemporaryTypeBible,
		Bible: content,
	}
	ps.state.IsHidden = false
	ps.state.IsPresenting = true
	return ps.commit(), nil
}

func (ps *PresentationService) bibleContent(verse *models.Verse, secondaryTranslationID *string) (*models.TemporaryBibleContent, error) {
	content := &models.TemporaryBibleContent{
		VerseID:                 verse.ID,
		TranslationID:           verse.TranslationID,
		BookID:                  verse.BookID,
		BookCode:                verse.BookCode,
		Chapter:                 verse.Chapter,
		CurrentVerseIndex:       verse.VerseNumber,
		Reference:               verse.Reference(),
		Text:                    verse.Text,
		BookName:                verse.BookName,
		TranslationAbbreviation: verse.TranslationAbbreviation,
	}
	if secondaryTranslationID != nil {
		secondary, err := ps.bible.FindVerse(*secondaryTranslationID, verse.BookID, verse.Chapter, verse.VerseNumber)
		if err != nil {
			// The overlay is best-effort: a translation missing this verse
			// should not block presenting the primary text.
			if !IsNotFound(err) {
				return nil, err
			}
			log.Printf("Secondary translation %s has no verse for %s", *secondaryTranslationID, verse.Reference())
		} else {
			content.SecondaryTranslationID = &secondary.TranslationID
			content.SecondaryText = &secondary.Text
			content.SecondaryTranslationAbbreviation = &secondary.TranslationAbbreviation
		}
	}
	return content, nil
}

// NavigateTemporary advances the cursor inside temporary content. Requests
// whose timestamp predates the applied state are dropped without error: a
// slow round trip must not undo a more recent click. Last writer wins only
// if it is actually newer.
func (ps *PresentationService) NavigateTemporary(input models.NavigateTemporaryInput) (*models.PresentationState, error) {
	if !input.Direction.Valid() {
		return nil, fmt.Errorf("invalid direction %q", input.Direction)
	}

	snapshot := ps.State()
	if snapshot.TemporaryContent == nil {
		return nil, ErrNoContent
	}
	if input.RequestTimestamp < snapshot.UpdatedAt {
		log.Printf("Dropping stale temporary navigation (request %d < state %d)",
			input.RequestTimestamp, snapshot.UpdatedAt)
		return snapshot, nil
	}

	switch snapshot.TemporaryContent.Type {
	case models.TemporaryTypeSong:
		return ps.navigateTemporarySong(input)
	case models.TemporaryTypeBible:
		return ps.navigateTemporaryBible(snapshot, input)
	default:
		return nil, fmt.Errorf("unknown temporary content type %q", snapshot.TemporaryContent.Type)
	}
}

func (ps *PresentationService) navigateTemporarySong(input models.NavigateTemporaryInput) (*models.PresentationState, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	// Re-check under the lock: content and timestamps may have moved since
	// the snapshot read.
	tc := ps.state.TemporaryContent
	if tc == nil || tc.Song == nil {
		return nil, ErrNoContent
	}
	if input.RequestTimestamp < ps.state.UpdatedAt {
		return ps.state.Clone(), nil
	}

	idx := tc.Song.CurrentSlideIndex
	switch input.Direction {
	case models.DirectionNext:
		if idx+1 >= len(tc.Song.Slides) {
			return nil, ErrNoContent
		}
		idx++
	case models.DirectionPrev:
		if idx == 0 {
			return nil, ErrNoContent
		}
		idx--
	}
	tc.Song.CurrentSlideIndex = idx
	return ps.commit(), nil
}

func (ps *PresentationService) navigateTemporaryBible(snapshot *models.PresentationState, input models.NavigateTemporaryInput) (*models.PresentationState, error) {
	bible := snapshot.TemporaryContent.Bible
	if bible == nil {
		return nil, ErrNoContent
	}

	current, err := ps.bible.GetVerse(bible.VerseID)
	if err != nil {
		return nil, err
	}
	adjacent, err := ps.bible.AdjacentVerse(current, input.Direction)
	if err != nil {
		return nil, err
	}
	content, err := ps.bibleContent(adjacent, bible.SecondaryTranslationID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	// The verse reads above are suspension points; a newer mutation may have
	// landed meanwhile. The timestamp comparison is the chosen mitigation
	// (accepted weaker policy, not full serializability).
	tc := ps.state.TemporaryContent
	if tc == nil || tc.Type != models.TemporaryTypeBible || tc.Bible == nil {
		return nil, ErrNoContent
	}
	if input.RequestTimestamp < ps.state.UpdatedAt {
		log.Printf("Dropping stale bible navigation (request %d < state %d)",
			input.RequestTimestamp, ps.state.UpdatedAt)
		return ps.state.Clone(), nil
	}

	tc.Bible = content
	return ps.commit(), nil
}

// ClearTemporaryContent drops the override, reverting rendering to the queue
// cursor (or blank if none).
func (ps *PresentationService) ClearTemporaryContent() (*models.PresentationState, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.state.TemporaryContent = nil
	return ps.commit(), nil
}

// IsBenign reports whether err is the benign no-content case.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNoContent)
}
