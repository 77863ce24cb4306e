package services

import (
	"database/sql"
	"errors"
	"fmt"

	"church-hub/internal/models"
)

// QueueService reads the ordered queue of presentable items. The queue is
// maintained by the schedule subsystem; the presentation core only resolves
// items and walks positions during navigation.
type QueueService struct {
	database *sql.DB
}

// NewQueueService creates a new queue service
func NewQueueService(database *sql.DB) *QueueService {
	return &QueueService{
		database: database,
	}
}

const queueColumns = `id, position, type, title, song_id, content, verse_id`

func scanQueueItem(row *sql.Row) (*models.QueueItem, error) {
	var item models.QueueItem
	err := row.Scan(&item.ID, &item.Position, &item.Type, &item.Title,
		&item.SongID, &item.Content, &item.VerseID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItem fetches one queue item by ID.
func (qs *QueueService) GetItem(id string) (*models.QueueItem, error) {
	row := qs.database.QueryRow(`SELECT `+queueColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "queue item", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query queue item: %w", err)
	}
	return item, nil
}

// AdjacentItem returns the queue item before or after the given one, or
// ErrNoContent at the queue edge.
func (qs *QueueService) AdjacentItem(currentID string, direction models.Direction) (*models.QueueItem, error) {
	current, err := qs.GetItem(currentID)
	if err != nil {
		return nil, err
	}

	var query string
	switch direction {
	case models.DirectionNext:
		query = `SELECT ` + queueColumns + ` FROM queue_items WHERE position > ? ORDER BY position ASC LIMIT 1`
	case models.DirectionPrev:
		query = `SELECT ` + queueColumns + ` FROM queue_items WHERE position < ? ORDER BY position DESC LIMIT 1`
	default:
		return nil, fmt.Errorf("invalid direction %q", direction)
	}

	item, err := scanQueueItem(qs.database.QueryRow(query, current.Position))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoContent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query adjacent queue item: %w", err)
	}
	return item, nil
}
