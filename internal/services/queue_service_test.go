package services

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-hub/internal/db"
	"church-hub/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection, or each pooled connection would see its own empty
	// in-memory database.
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.CreateTables(database))
	return database
}

func mustExec(t *testing.T, database *sql.DB, query string, args ...interface{}) {
	t.Helper()
	_, err := database.Exec(query, args...)
	require.NoError(t, err)
}

func seedQueue(t *testing.T, database *sql.DB) {
	mustExec(t, database, `INSERT INTO songs (id, title) VALUES ('song-1', 'First Song')`)
	mustExec(t, database, `INSERT INTO queue_items (id, position, type, title, song_id) VALUES ('q1', 0, 'song', 'First Song', 'song-1')`)
	mustExec(t, database, `INSERT INTO queue_items (id, position, type, title, content) VALUES ('q2', 1, 'slide', 'Announcements', '<p>Welcome</p>')`)
	mustExec(t, database, `INSERT INTO queue_items (id, position, type, title, verse_id) VALUES ('q3', 2, 'bible', 'Reading', 'v1')`)
}

func TestQueueGetItem(t *testing.T) {
	database := testDB(t)
	seedQueue(t, database)
	qs := NewQueueService(database)

	item, err := qs.GetItem("q2")
	require.NoError(t, err)
	assert.Equal(t, models.QueueItemSlide, item.Type)
	assert.Nil(t, item.SongID)
	require.NotNil(t, item.Content)
	assert.Equal(t, "<p>Welcome</p>", *item.Content)

	_, err = qs.GetItem("nope")
	assert.True(t, IsNotFound(err))
}

func TestQueueAdjacentItemWalksPositions(t *testing.T) {
	database := testDB(t)
	seedQueue(t, database)
	qs := NewQueueService(database)

	next, err := qs.AdjacentItem("q1", models.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "q2", next.ID)

	prev, err := qs.AdjacentItem("q3", models.DirectionPrev)
	require.NoError(t, err)
	assert.Equal(t, "q2", prev.ID)
}

func TestQueueAdjacentItemEdges(t *testing.T) {
	database := testDB(t)
	seedQueue(t, database)
	qs := NewQueueService(database)

	_, err := qs.AdjacentItem("q3", models.DirectionNext)
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = qs.AdjacentItem("q1", models.DirectionPrev)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestQueueAdjacentItemSurvivesPositionGaps(t *testing.T) {
	database := testDB(t)
	mustExec(t, database, `INSERT INTO queue_items (id, position, type, title) VALUES ('a', 0, 'slide', 'A')`)
	mustExec(t, database, `INSERT INTO queue_items (id, position, type, title) VALUES ('b', 10, 'slide', 'B')`)
	qs := NewQueueService(database)

	next, err := qs.AdjacentItem("a", models.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID)
}

func TestSongSlidesComeBackInSortOrder(t *testing.T) {
	database := testDB(t)
	mustExec(t, database, `INSERT INTO songs (id, title, author, ccli) VALUES ('song-1', 'First Song', 'A. Writer', '12345')`)
	// Inserted out of order on purpose.
	mustExec(t, database, `INSERT INTO song_slides (id, song_id, content, sort_order) VALUES ('s2', 'song-1', 'second', 1)`)
	mustExec(t, database, `INSERT INTO song_slides (id, song_id, content, sort_order, label) VALUES ('s1', 'song-1', 'first', 0, 'C1')`)
	ss := NewSongService(database)

	song, err := ss.GetSong("song-1")
	require.NoError(t, err)
	assert.Equal(t, "12345", song.CCLI)

	songSlides, err := ss.GetSlides("song-1")
	require.NoError(t, err)
	require.Len(t, songSlides, 2)
	assert.Equal(t, "s1", songSlides[0].ID)
	assert.Equal(t, "C1", songSlides[0].LabelOrEmpty())
	assert.Equal(t, "s2", songSlides[1].ID)
	assert.Nil(t, songSlides[1].Label)
}

func TestSongNotFound(t *testing.T) {
	database := testDB(t)
	ss := NewSongService(database)

	_, err := ss.GetSong("nope")
	assert.True(t, IsNotFound(err))
	_, err = ss.GetSlide("nope")
	assert.True(t, IsNotFound(err))
}

func seedBible(t *testing.T, database *sql.DB) {
	insert := `INSERT INTO bible_verses (id, translation_id, translation_abbreviation, book_id, book_code, book_name, chapter, verse_number, text)
		VALUES (?, 'kjv', 'KJV', 'psalms', 'PSA', 'Psalms', ?, ?, ?)`
	mustExec(t, database, insert, "p1", 22, 31, "last verse of 22")
	mustExec(t, database, insert, "p2", 23, 1, "The LORD is my shepherd")
	mustExec(t, database, insert, "p3", 23, 2, "He maketh me to lie down")
}

func TestBibleFindAndGetVerse(t *testing.T) {
	database := testDB(t)
	seedBible(t, database)
	bs := NewBibleService(database)

	v, err := bs.FindVerse("kjv", "psalms", 23, 1)
	require.NoError(t, err)
	assert.Equal(t, "p2", v.ID)
	assert.Equal(t, "Psalms 23:1", v.Reference())

	_, err = bs.FindVerse("kjv", "psalms", 23, 99)
	assert.True(t, IsNotFound(err))

	v, err = bs.GetVerse("p3")
	require.NoError(t, err)
	assert.Equal(t, 2, v.VerseNumber)
}

func TestBibleAdjacentVerseCrossesChapters(t *testing.T) {
	database := testDB(t)
	seedBible(t, database)
	bs := NewBibleService(database)

	last22, err := bs.GetVerse("p1")
	require.NoError(t, err)

	next, err := bs.AdjacentVerse(last22, models.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, 23, next.Chapter)
	assert.Equal(t, 1, next.VerseNumber)

	prev, err := bs.AdjacentVerse(next, models.DirectionPrev)
	require.NoError(t, err)
	assert.Equal(t, "p1", prev.ID)
}

func TestBibleAdjacentVerseEdges(t *testing.T) {
	database := testDB(t)
	seedBible(t, database)
	bs := NewBibleService(database)

	first, err := bs.GetVerse("p1")
	require.NoError(t, err)
	_, err = bs.AdjacentVerse(first, models.DirectionPrev)
	assert.ErrorIs(t, err, ErrNoContent)

	last, err := bs.GetVerse("p3")
	require.NoError(t, err)
	_, err = bs.AdjacentVerse(last, models.DirectionNext)
	assert.ErrorIs(t, err, ErrNoContent)
}
