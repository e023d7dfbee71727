package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/database/repository"
	"github.com/jask/photobooth/internal/session"
)

// ContactService hands the visitor's contact details to the backend. Callers treat it
// as fire-and-forget: failures are logged and recorded, never shown.
type ContactService struct {
	Backend  api.Backend
	Contacts *repository.ContactRepo
	Log      *zap.Logger
}

// Submit sends c and records the outcome. Timeout: 10s.
func (s *ContactService) Submit(ctx context.Context, sessionID string, c session.Contact) (api.SaveResult, error) {
	log := logger(s.Log).With(zap.String("session", sessionID))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.Backend == nil {
		return api.SaveResult{}, fmt.Errorf("contact: backend not configured")
	}
	row := repository.Contact{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Name:      strings.TrimSpace(c.Name),
		Phone:     strings.TrimSpace(c.Phone),
		Status:    repository.StatusPending,
	}
	if s.Contacts != nil {
		if err := s.Contacts.Insert(ctx, row); err != nil {
			log.Warn("record contact", zap.Error(err))
		}
	}

	res, err := s.Backend.SaveUserData(ctx, api.UserData{Name: row.Name, Phone: row.Phone})
	if err != nil {
		log.Error("failed to save user data", zap.Error(err))
		if s.Contacts != nil {
			if rerr := s.Contacts.MarkFailed(ctx, row.ID, err.Error()); rerr != nil {
				log.Warn("record contact failure", zap.Error(rerr))
			}
		}
		return api.SaveResult{}, err
	}

	log.Info("user data saved", zap.String("remote_id", res.ID))
	if s.Contacts != nil {
		var remote *string
		if res.ID != "" {
			remote = &res.ID
		}
		if rerr := s.Contacts.MarkSent(ctx, row.ID, remote); rerr != nil {
			log.Warn("record contact sent", zap.Error(rerr))
		}
	}
	return res, nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
