package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDatabase initializes SQLite database and creates tables
func InitDatabase(dbPath string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables
	if err := CreateTables(DB); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("Database initialized at: %s", dbPath)
	return nil
}

// CreateTables creates all tables the presentation core reads. Song and
// queue CRUD lives elsewhere; this schema is the read-side contract.
func CreateTables(database *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			ccli TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS song_slides (
			id TEXT PRIMARY KEY,
			song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			label TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_song_slides_song ON song_slides(song_id, sort_order);`,
		`CREATE TABLE IF NOT EXISTS queue_items (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			song_id TEXT REFERENCES songs(id) ON DELETE CASCADE,
			content TEXT,
			verse_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_queue_items_position ON queue_items(position);`,
		`CREATE TABLE IF NOT EXISTS bible_verses (
			id TEXT PRIMARY KEY,
			translation_id TEXT NOT NULL,
			translation_abbreviation TEXT NOT NULL,
			book_id TEXT NOT NULL,
			book_code TEXT NOT NULL,
			book_name TEXT NOT NULL,
			chapter INTEGER NOT NULL,
			verse_number INTEGER NOT NULL,
			text TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bible_verses_ref
			ON bible_verses(translation_id, book_id, chapter, verse_number);`,
	}

	for _, stmt := range statements {
		if _, err := database.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Println("Database tables created successfully")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
