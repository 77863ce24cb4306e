package models

// QueueItemType discriminates the kinds of presentable queue entries.
type QueueItemType string

const (
	QueueItemSong  QueueItemType = "song"
	QueueItemSlide QueueItemType = "slide"
	QueueItemBible QueueItemType = "bible"
)

// QueueItem is an entry in the ordered list of presentable content. The
// queue itself is maintained elsewhere; the presentation core only reads it
// to resolve navigation.
type QueueItem struct {
	ID       string        `json:"id"`
	Position int           `json:"position"`
	Type     QueueItemType `json:"type"`
	Title    string        `json:"title"`
	SongID   *string       `json:"songId,omitempty"`
	Content  *string       `json:"content,omitempty"`
	VerseID  *string       `json:"verseId,omitempty"`
}
