// Package session holds the per-visitor hand-off values passed between wizard steps.
//
// A Session is owned by the TUI event loop and is not safe for concurrent use.
// Values are optionally written through to a Store so that a restart keeps what the
// visitor already typed.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hand-off keys.
const (
	KeyName             = "name"
	KeyPhone            = "phone"
	KeyGender           = "gender"
	KeySelectedTemplate = "selectedTemplate"
	KeySwappedPhoto     = "swappedPhoto"
	KeyQRCodeData       = "qrCodeData"
	KeyGoogleDriveInfo  = "googleDriveInfo"
)

// Keys lists every hand-off key in step order.
var Keys = []string{
	KeyName, KeyPhone, KeyGender, KeySelectedTemplate,
	KeySwappedPhoto, KeyQRCodeData, KeyGoogleDriveInfo,
}

// ErrMalformedDriveInfo is returned when googleDriveInfo is not valid JSON.
var ErrMalformedDriveInfo = errors.New("session: malformed gallery info")

// Store persists session values.
type Store interface {
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	All(ctx context.Context) (map[string]string, error)
}

// Contact is the visitor's contact details.
type Contact struct {
	Name  string
	Phone string
}

// Complete reports whether both fields are non-blank.
func (c Contact) Complete() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Phone) != ""
}

// DriveInfo is the gallery metadata returned by the swap backend.
type DriveInfo struct {
	GalleryURL string `json:"gallery_url"`
	FileID     string `json:"file_id,omitempty"`
	FolderID   string `json:"folder_id,omitempty"`
	ViewURL    string `json:"view_url,omitempty"`
}

// Session is the explicit session-context object.
type Session struct {
	ctx    context.Context
	id     string
	values map[string]string
	store  Store
	log    *zap.Logger
}

// New returns an empty session. store and log may be nil.
func New(ctx context.Context, store Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		ctx:    ctx,
		id:     uuid.NewString(),
		values: map[string]string{},
		store:  store,
		log:    log,
	}
}

// Load restores persisted values from the store.
func (s *Session) Load() error {
	if s.store == nil {
		return nil
	}
	vals, err := s.store.All(s.ctx)
	if err != nil {
		return fmt.Errorf("session: load: %w", err)
	}
	for k, v := range vals {
		s.values[k] = v
	}
	return nil
}

// ID identifies the current visitor; it changes on Clear.
func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) string { return s.values[key] }

// Set stores value under key. An empty value deletes the key.
func (s *Session) Set(key, value string) {
	if value == "" {
		s.Delete(key)
		return
	}
	s.values[key] = value
	if s.store != nil {
		if err := s.store.Put(s.ctx, key, value); err != nil {
			s.log.Warn("session write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *Session) Delete(keys ...string) {
	for _, k := range keys {
		delete(s.values, k)
	}
	if s.store != nil {
		if err := s.store.Delete(s.ctx, keys...); err != nil {
			s.log.Warn("session delete failed", zap.Strings("keys", keys), zap.Error(err))
		}
	}
}

// Clear drops every value and starts a new session id.
func (s *Session) Clear() {
	s.values = map[string]string{}
	s.id = uuid.NewString()
	if s.store != nil {
		if err := s.store.Clear(s.ctx); err != nil {
			s.log.Warn("session clear failed", zap.Error(err))
		}
	}
}

// Len returns the number of stored values.
func (s *Session) Len() int { return len(s.values) }

func (s *Session) Contact() Contact {
	return Contact{Name: s.values[KeyName], Phone: s.values[KeyPhone]}
}

func (s *Session) SetContact(c Contact) {
	s.Set(KeyName, c.Name)
	s.Set(KeyPhone, c.Phone)
}

// ClearContact removes the contact keys once they have been handed to the backend.
func (s *Session) ClearContact() { s.Delete(KeyName, KeyPhone) }

func (s *Session) Gender() string           { return s.values[KeyGender] }
func (s *Session) SelectedTemplate() string { return s.values[KeySelectedTemplate] }
func (s *Session) SwappedPhoto() string     { return s.values[KeySwappedPhoto] }
func (s *Session) QRCode() string           { return s.values[KeyQRCodeData] }

// DriveInfo parses googleDriveInfo. It returns nil, nil when the key is unset.
func (s *Session) DriveInfo() (*DriveInfo, error) {
	raw, ok := s.values[KeyGoogleDriveInfo]
	if !ok {
		return nil, nil
	}
	var info DriveInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDriveInfo, err)
	}
	return &info, nil
}
