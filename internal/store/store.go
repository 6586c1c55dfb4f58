// Package store provides the result-slot cache backends for MemberFlow.
//
// Fetch workflows store the latest member record, complaint list, news feed,
// alerts and information record here; the presentation layer reads them
// reactively through the API. Backends: in-memory, SQLite and PostgreSQL.
package store

import (
	"sync"

	"github.com/gremialdev/memberflow/internal/models"
)

// Store is the result-slot interface shared by all backends.
type Store interface {
	SaveUser(user models.User) error
	GetUser() (*models.User, error)
	SaveComplaints(complaints []models.Complaint) error
	GetComplaints() ([]models.Complaint, error)
	AddSubmittedComplaint(complaint models.Complaint) error
	GetSubmittedComplaints() ([]models.Complaint, error)
	SaveNews(news []models.NewsItem) error
	GetNews() ([]models.NewsItem, error)
	SaveAlerts(alerts []models.Alert) error
	GetAlerts() ([]models.Alert, error)
	SaveInformation(info models.Information) error
	GetInformation() (*models.Information, error)
	SaveDocuments(docs []models.Document) error
	GetDocuments() ([]models.Document, error)
	SaveDocument(doc models.Document) error
	GetDocument() (*models.Document, error)
	SaveComplaintImages(images []models.Image) error
	GetComplaintImages() ([]models.Image, error)
	Close() error
}

// Opts holds configuration options for persistent store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore keeps all slots in process memory. Used when no DSN is
// configured and as the default in tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	user       *models.User
	complaints []models.Complaint
	submitted  []models.Complaint
	news       []models.NewsItem
	alerts     []models.Alert
	info       *models.Information
	documents  []models.Document
	document   *models.Document
	images     []models.Image
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) SaveUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *InMemoryStore) GetUser() (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *InMemoryStore) SaveComplaints(complaints []models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints = append([]models.Complaint(nil), complaints...)
	return nil
}

func (s *InMemoryStore) GetComplaints() ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Complaint(nil), s.complaints...), nil
}

func (s *InMemoryStore) AddSubmittedComplaint(complaint models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, complaint)
	return nil
}

func (s *InMemoryStore) GetSubmittedComplaints() ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Complaint(nil), s.submitted...), nil
}

func (s *InMemoryStore) SaveNews(news []models.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = append([]models.NewsItem(nil), news...)
	return nil
}

func (s *InMemoryStore) GetNews() ([]models.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.NewsItem(nil), s.news...), nil
}

func (s *InMemoryStore) SaveAlerts(alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append([]models.Alert(nil), alerts...)
	return nil
}

func (s *InMemoryStore) GetAlerts() ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Alert(nil), s.alerts...), nil
}

func (s *InMemoryStore) SaveInformation(info models.Information) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = &info
	return nil
}

func (s *InMemoryStore) GetInformation() (*models.Information, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil, nil
	}
	i := *s.info
	return &i, nil
}

func (s *InMemoryStore) SaveDocuments(docs []models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append([]models.Document(nil), docs...)
	return nil
}

func (s *InMemoryStore) GetDocuments() ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Document(nil), s.documents...), nil
}

func (s *InMemoryStore) SaveDocument(doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = &doc
	return nil
}

func (s *InMemoryStore) GetDocument() (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.document == nil {
		return nil, nil
	}
	d := *s.document
	return &d, nil
}

func (s *InMemoryStore) SaveComplaintImages(images []models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append([]models.Image(nil), images...)
	return nil
}

func (s *InMemoryStore) GetComplaintImages() ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Image(nil), s.images...), nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
