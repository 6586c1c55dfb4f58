package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Slot names used by the SQL-backed stores.
const (
	slotUser            = "user"
	slotComplaints      = "complaints"
	slotNews            = "news"
	slotAlerts          = "alerts"
	slotInformation     = "information"
	slotDocuments       = "documents"
	slotDocument        = "document"
	slotComplaintImages = "complaint_images"
)

// DetectDSNType classifies a DSN as "postgres" or "sqlite". PostgreSQL DSNs
// use the postgres:// scheme or key=value connection strings; anything else
// is treated as an SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// encodeSlot marshals a slot value to its JSON representation.
func encodeSlot(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode slot value: %w", err)
	}
	return string(data), nil
}

// decodeSlot unmarshals a slot payload into out.
func decodeSlot(payload string, out interface{}) error {
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("failed to decode slot value: %w", err)
	}
	return nil
}
