package services

import (
	"database/sql"
	"errors"
	"fmt"

	"church-hub/internal/models"
)

// SongService reads songs and slides for the presentation core. Song CRUD
// lives in the library subsystem; this is the read side only.
type SongService struct {
	database *sql.DB
}

// NewSongService creates a new song service
func NewSongService(database *sql.DB) *SongService {
	return &SongService{
		database: database,
	}
}

// GetSong fetches one song by ID.
func (ss *SongService) GetSong(id string) (*models.Song, error) {
	query := `SELECT id, title, author, ccli FROM songs WHERE id = ?`

	var song models.Song
	err := ss.database.QueryRow(query, id).Scan(&song.ID, &song.Title, &song.Author, &song.CCLI)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "song", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song: %w", err)
	}
	return &song, nil
}

// GetSlides fetches a song's slides in sort order. Labels come back as the
// author stored them; label assignment and expansion happen at
// presentation/export time.
func (ss *SongService) GetSlides(songID string) ([]models.SongSlide, error) {
	query := `SELECT id, song_id, content, sort_order, label
		FROM song_slides WHERE song_id = ? ORDER BY sort_order`

	rows, err := ss.database.Query(query, songID)
	if err != nil {
		return nil, fmt.Errorf("failed to query slides: %w", err)
	}
	defer rows.Close()

	var out []models.SongSlide
	for rows.Next() {
		var slide models.SongSlide
		if err := rows.Scan(&slide.ID, &slide.SongID, &slide.Content, &slide.SortOrder, &slide.Label); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		out = append(out, slide)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read slides: %w", err)
	}
	return out, nil
}

// GetSlide fetches one slide by ID.
func (ss *SongService) GetSlide(id string) (*models.SongSlide, error) {
	query := `SELECT id, song_id, content, sort_order, label FROM song_slides WHERE id = ?`

	var slide models.SongSlide
	err := ss.database.QueryRow(query, id).Scan(&slide.ID, &slide.SongID, &slide.Content, &slide.SortOrder, &slide.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "slide", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query slide: %w", err)
	}
	return &slide, nil
}
