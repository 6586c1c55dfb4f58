// Package store provides the result-slot cache backends for MemberFlow.
//
// This file implements the SQLite-backed store used for on-device caching.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/google/uuid"
	"github.com/gremialdev/memberflow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// saveSlot stores or replaces one named slot.
func (s *SQLiteStore) saveSlot(slot string, value interface{}) error {
	payload, err := encodeSlot(value)
	if err != nil {
		slog.Error("SQLiteStore saveSlot encode failed", "error", err, "slot", slot)
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO state_slots (slot, payload, updated_at) VALUES (?, ?, ?)`,
		slot, payload, time.Now().UTC(),
	)
	if err != nil {
		slog.Error("SQLiteStore saveSlot failed", "error", err, "slot", slot)
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}
	slog.Debug("SQLiteStore saveSlot succeeded", "slot", slot)
	return nil
}

// loadSlot reads one named slot into out. Returns false when the slot is empty.
func (s *SQLiteStore) loadSlot(slot string, out interface{}) (bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM state_slots WHERE slot = ?`, slot).Scan(&payload)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore loadSlot empty", "slot", slot)
		return false, nil
	}
	if err != nil {
		slog.Error("SQLiteStore loadSlot failed", "error", err, "slot", slot)
		return false, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	if err := decodeSlot(payload, out); err != nil {
		slog.Error("SQLiteStore loadSlot decode failed", "error", err, "slot", slot)
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) SaveUser(user models.User) error {
	return s.saveSlot(slotUser, user)
}

func (s *SQLiteStore) GetUser() (*models.User, error) {
	var user models.User
	ok, err := s.loadSlot(slotUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteStore) SaveComplaints(complaints []models.Complaint) error {
	return s.saveSlot(slotComplaints, complaints)
}

func (s *SQLiteStore) GetComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	if _, err := s.loadSlot(slotComplaints, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *SQLiteStore) AddSubmittedComplaint(complaint models.Complaint) error {
	payload, err := encodeSlot(complaint)
	if err != nil {
		return err
	}
	id := complaint.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO submitted_complaints (id, payload, created_at) VALUES (?, ?, ?)`,
		id, payload, time.Now().UTC(),
	)
	if err != nil {
		slog.Error("SQLiteStore AddSubmittedComplaint failed", "error", err, "id", id)
		return fmt.Errorf("failed to insert submitted complaint %s: %w", id, err)
	}
	slog.Debug("SQLiteStore AddSubmittedComplaint succeeded", "id", id)
	return nil
}

func (s *SQLiteStore) GetSubmittedComplaints() ([]models.Complaint, error) {
	rows, err := s.db.Query(`SELECT payload FROM submitted_complaints ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore GetSubmittedComplaints query failed", "error", err)
		return nil, fmt.Errorf("failed to query submitted complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			slog.Error("SQLiteStore GetSubmittedComplaints scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan submitted complaint row: %w", err)
		}
		var c models.Complaint
		if err := decodeSlot(payload, &c); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetSubmittedComplaints rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate submitted complaint rows: %w", err)
	}
	slog.Debug("SQLiteStore GetSubmittedComplaints succeeded", "count", len(complaints))
	return complaints, nil
}

func (s *SQLiteStore) SaveNews(news []models.NewsItem) error {
	return s.saveSlot(slotNews, news)
}

func (s *SQLiteStore) GetNews() ([]models.NewsItem, error) {
	var news []models.NewsItem
	if _, err := s.loadSlot(slotNews, &news); err != nil {
		return nil, err
	}
	return news, nil
}

func (s *SQLiteStore) SaveAlerts(alerts []models.Alert) error {
	return s.saveSlot(slotAlerts, alerts)
}

func (s *SQLiteStore) GetAlerts() ([]models.Alert, error) {
	var alerts []models.Alert
	if _, err := s.loadSlot(slotAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *SQLiteStore) SaveInformation(info models.Information) error {
	return s.saveSlot(slotInformation, info)
}

func (s *SQLiteStore) GetInformation() (*models.Information, error) {
	var info models.Information
	ok, err := s.loadSlot(slotInformation, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

func (s *SQLiteStore) SaveDocuments(docs []models.Document) error {
	return s.saveSlot(slotDocuments, docs)
}

func (s *SQLiteStore) GetDocuments() ([]models.Document, error) {
	var docs []models.Document
	if _, err := s.loadSlot(slotDocuments, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *SQLiteStore) SaveDocument(doc models.Document) error {
	return s.saveSlot(slotDocument, doc)
}

func (s *SQLiteStore) GetDocument() (*models.Document, error) {
	var doc models.Document
	ok, err := s.loadSlot(slotDocument, &doc)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLiteStore) SaveComplaintImages(images []models.Image) error {
	return s.saveSlot(slotComplaintImages, images)
}

func (s *SQLiteStore) GetComplaintImages() ([]models.Image, error) {
	var images []models.Image
	if _, err := s.loadSlot(slotComplaintImages, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
