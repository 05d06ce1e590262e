package migstate

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the only document schema this package reads or writes.
const SchemaVersion = "v1"

// Status is the recorded state of a single workflow stage.
type Status string

const (
	// StatusUnset means the stage has never been recorded. It is a
	// sentinel for callers and is never persisted in a document.
	StatusUnset Status = ""

	// StatusStarted marks a stage that has begun but not finished.
	StatusStarted Status = "started"

	// StatusCompleted marks a stage that finished successfully.
	// Once persisted it is terminal: Set never moves a stage back.
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the persistable status values.
func (s Status) Valid() bool {
	return s == StatusStarted || s == StatusCompleted
}

// Terminal reports whether s can never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Document is the persisted state ledger: a schema version plus a mapping
// of stage name to stage status. The document is the unit of storage;
// every mutation rewrites it whole.
type Document struct {
	Version string            `json:"version"`
	Stages  map[string]Status `json:"stages"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		Version: SchemaVersion,
		Stages:  map[string]Status{},
	}
}

// Encode produces the canonical JSON representation of the document.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses document bytes, enforcing the expected shape.
// Invalid JSON, a schema version other than SchemaVersion, or a status
// value outside the enum all return a *MalformedDocumentError.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedDocumentError{Cause: err}
	}

	if doc.Version != SchemaVersion {
		return nil, &MalformedDocumentError{
			Cause: fmt.Errorf("unsupported schema version %q (want %q)", doc.Version, SchemaVersion),
		}
	}

	if doc.Stages == nil {
		doc.Stages = map[string]Status{}
	}

	for name, status := range doc.Stages {
		if !status.Valid() {
			return nil, &MalformedDocumentError{
				Cause: fmt.Errorf("stage %q has invalid status %q", name, status),
			}
		}
	}

	return &doc, nil
}
