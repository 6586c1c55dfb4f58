// Package store provides the result-slot cache backends for MemberFlow.
//
// This file implements the PostgreSQL-backed store used by server-side
// deployments of the workflow core.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/google/uuid"
	"github.com/gremialdev/memberflow/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) saveSlot(slot string, value interface{}) error {
	payload, err := encodeSlot(value)
	if err != nil {
		slog.Error("PostgresStore saveSlot encode failed", "error", err, "slot", slot)
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO state_slots (slot, payload, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		slot, payload, time.Now().UTC(),
	)
	if err != nil {
		slog.Error("PostgresStore saveSlot failed", "error", err, "slot", slot)
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}
	slog.Debug("PostgresStore saveSlot succeeded", "slot", slot)
	return nil
}

func (s *PostgresStore) loadSlot(slot string, out interface{}) (bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM state_slots WHERE slot = $1`, slot).Scan(&payload)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore loadSlot empty", "slot", slot)
		return false, nil
	}
	if err != nil {
		slog.Error("PostgresStore loadSlot failed", "error", err, "slot", slot)
		return false, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	if err := decodeSlot(payload, out); err != nil {
		slog.Error("PostgresStore loadSlot decode failed", "error", err, "slot", slot)
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) SaveUser(user models.User) error {
	return s.saveSlot(slotUser, user)
}

func (s *PostgresStore) GetUser() (*models.User, error) {
	var user models.User
	ok, err := s.loadSlot(slotUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) SaveComplaints(complaints []models.Complaint) error {
	return s.saveSlot(slotComplaints, complaints)
}

func (s *PostgresStore) GetComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	if _, err := s.loadSlot(slotComplaints, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *PostgresStore) AddSubmittedComplaint(complaint models.Complaint) error {
	payload, err := encodeSlot(complaint)
	if err != nil {
		return err
	}
	id := complaint.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = s.db.Exec(
		`INSERT INTO submitted_complaints (id, payload, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		id, payload, time.Now().UTC(),
	)
	if err != nil {
		slog.Error("PostgresStore AddSubmittedComplaint failed", "error", err, "id", id)
		return fmt.Errorf("failed to insert submitted complaint %s: %w", id, err)
	}
	slog.Debug("PostgresStore AddSubmittedComplaint succeeded", "id", id)
	return nil
}

func (s *PostgresStore) GetSubmittedComplaints() ([]models.Complaint, error) {
	rows, err := s.db.Query(`SELECT payload FROM submitted_complaints ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore GetSubmittedComplaints query failed", "error", err)
		return nil, fmt.Errorf("failed to query submitted complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			slog.Error("PostgresStore GetSubmittedComplaints scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan submitted complaint row: %w", err)
		}
		var c models.Complaint
		if err := decodeSlot(payload, &c); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetSubmittedComplaints rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate submitted complaint rows: %w", err)
	}
	slog.Debug("PostgresStore GetSubmittedComplaints succeeded", "count", len(complaints))
	return complaints, nil
}

func (s *PostgresStore) SaveNews(news []models.NewsItem) error {
	return s.saveSlot(slotNews, news)
}

func (s *PostgresStore) GetNews() ([]models.NewsItem, error) {
	var news []models.NewsItem
	if _, err := s.loadSlot(slotNews, &news); err != nil {
		return nil, err
	}
	return news, nil
}

func (s *PostgresStore) SaveAlerts(alerts []models.Alert) error {
	return s.saveSlot(slotAlerts, alerts)
}

func (s *PostgresStore) GetAlerts() ([]models.Alert, error) {
	var alerts []models.Alert
	if _, err := s.loadSlot(slotAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *PostgresStore) SaveInformation(info models.Information) error {
	return s.saveSlot(slotInformation, info)
}

func (s *PostgresStore) GetInformation() (*models.Information, error) {
	var info models.Information
	ok, err := s.loadSlot(slotInformation, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

func (s *PostgresStore) SaveDocuments(docs []models.Document) error {
	return s.saveSlot(slotDocuments, docs)
}

func (s *PostgresStore) GetDocuments() ([]models.Document, error) {
	var docs []models.Document
	if _, err := s.loadSlot(slotDocuments, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *PostgresStore) SaveDocument(doc models.Document) error {
	return s.saveSlot(slotDocument, doc)
}

func (s *PostgresStore) GetDocument() (*models.Document, error) {
	var doc models.Document
	ok, err := s.loadSlot(slotDocument, &doc)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

func (s *PostgresStore) SaveComplaintImages(images []models.Image) error {
	return s.saveSlot(slotComplaintImages, images)
}

func (s *PostgresStore) GetComplaintImages() ([]models.Image, error) {
	var images []models.Image
	if _, err := s.loadSlot(slotComplaintImages, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
