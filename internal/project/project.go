// Package project persists saved photo projects.
//
// A project record links a user to the URL of an uploaded image. Records are
// created on the first save of a session and updated on later saves, which
// is decided by the optional ID carried by the session.
package project

import (
	"context"
	"encoding/json"
	"iter"
	"time"

	"github.com/ironsheep/photoedit-mcp/internal/auth"
)

// ID is an optional project identifier. The zero value is NoID.
type ID struct {
	value string
	set   bool
}

// NoID means the project has not been saved yet.
var NoID = ID{}

// NewID wraps an existing record id. An empty string yields NoID.
func NewID(s string) ID {
	if s == "" {
		return NoID
	}
	return ID{value: s, set: true}
}

// Get returns the id and whether it is set.
func (id ID) Get() (string, bool) { return id.value, id.set }

// IsSet reports whether the id refers to a saved record.
func (id ID) IsSet() bool { return id.set }

func (id ID) String() string {
	if !id.set {
		return "<none>"
	}
	return id.value
}

// MarshalJSON encodes NoID as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.set {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts null, "" or an id string.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*id = NoID
		return nil
	}
	*id = NewID(*s)
	return nil
}

// Record is one saved project.
type Record struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	ImageURL  string    `json:"image_url"`
	Timestamp time.Time `json:"timestamp"`
}

// Gateway stores project records.
//
// Every operation requires a signed-in user and only touches that user's
// records; anything else is a validation error.
type Gateway interface {
	// Save inserts a record when id is NoID and otherwise updates the image
	// URL and timestamp of an existing record. It returns the record id.
	Save(ctx context.Context, ownerID string, id ID, imageURL string) (string, error)

	// List yields the owner's records, newest first. Each range over the
	// sequence runs a fresh query.
	List(ctx context.Context, ownerID string) iter.Seq2[Record, error]

	// Delete removes one record.
	Delete(ctx context.Context, id string) error

	// DeleteAllByOwner removes every record of the owner in one transaction
	// and returns how many were removed.
	DeleteAllByOwner(ctx context.Context, ownerID string) (int, error)
}

// Authenticator reports the signed-in user. *auth.Session implements it.
type Authenticator interface {
	CurrentUser() (auth.User, bool)
}
