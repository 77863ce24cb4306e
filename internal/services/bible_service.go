package services

import (
	"database/sql"
	"errors"
	"fmt"

	"church-hub/internal/models"
)

// BibleService reads bible verses for temporary-content presentation.
type BibleService struct {
	database *sql.DB
}

// NewBibleService creates a new bible service
func NewBibleService(database *sql.DB) *BibleService {
	return &BibleService{
		database: database,
	}
}

const verseColumns = `id, translation_id, translation_abbreviation, book_id, book_code,
	book_name, chapter, verse_number, text`

func scanVerse(row *sql.Row) (*models.Verse, error) {
	var v models.Verse
	err := row.Scan(&v.ID, &v.TranslationID, &v.TranslationAbbreviation, &v.BookID,
		&v.BookCode, &v.BookName, &v.Chapter, &v.VerseNumber, &v.Text)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVerse fetches one verse by ID.
func (bs *BibleService) GetVerse(id string) (*models.Verse, error) {
	row := bs.database.QueryRow(`SELECT `+verseColumns+` FROM bible_verses WHERE id = ?`, id)
	v, err := scanVerse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "verse", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query verse: %w", err)
	}
	return v, nil
}

// FindVerse fetches a verse by reference within one translation.
func (bs *BibleService) FindVerse(translationID, bookID string, chapter, verseNumber int) (*models.Verse, error) {
	query := `SELECT ` + verseColumns + ` FROM bible_verses
		WHERE translation_id = ? AND book_id = ? AND chapter = ? AND verse_number = ?`

	v, err := scanVerse(bs.database.QueryRow(query, translationID, bookID, chapter, verseNumber))
	if errors.Is(err, sql.ErrNoRows) {
		ref := fmt.Sprintf("%s %s %d:%d", translationID, bookID, chapter, verseNumber)
		return nil, &NotFoundError{Kind: "verse", ID: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query verse: %w", err)
	}
	return v, nil
}

// AdjacentVerse returns the verse before or after the given one within the
// same book and translation, crossing chapter boundaries when the data has
// them. Returns ErrNoContent at the edges of the stored text.
func (bs *BibleService) AdjacentVerse(v *models.Verse, direction models.Direction) (*models.Verse, error) {
	var query string
	switch direction {
	case models.DirectionNext:
		query = `SELECT ` + verseColumns + ` FROM bible_verses
			WHERE translation_id = ? AND book_id = ?
			AND (chapter > ? OR (chapter = ? AND verse_number > ?))
			ORDER BY chapter ASC, verse_number ASC LIMIT 1`
	case models.DirectionPrev:
		query = `SELECT ` + verseColumns + ` FROM bible_verses
			WHERE translation_id = ? AND book_id = ?
			AND (chapter < ? OR (chapter = ? AND verse_number < ?))
			ORDER BY chapter DESC, verse_number DESC LIMIT 1`
	default:
		return nil, fmt.Errorf("invalid direction %q", direction)
	}

	next, err := scanVerse(bs.database.QueryRow(query,
		v.TranslationID, v.BookID, v.Chapter, v.Chapter, v.VerseNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoContent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query adjacent verse: %w", err)
	}
	return next, nil
}
