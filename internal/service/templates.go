package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/api"
)

// Genders offered on the gender step, in display order.
var Genders = []string{"men", "women"}

// TemplateService loads templates for a gender.
type TemplateService struct {
	Backend api.Backend
	Log     *zap.Logger
}

// Fetch never fails: errors are logged and degrade to an empty list. Timeout: 15s.
func (s *TemplateService) Fetch(ctx context.Context, gender string) []api.Template {
	log := logger(s.Log).With(zap.String("gender", gender))
	if s.Backend == nil {
		log.Error("fetching templates: backend not configured")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	list, err := s.Backend.FetchTemplates(ctx, gender)
	if err != nil {
		log.Error("fetching templates", zap.Error(err))
		return nil
	}
	out := list[:0:0]
	for _, t := range list {
		if t.ImageURL != "" {
			out = append(out, t)
		}
	}
	log.Debug("templates loaded", zap.Int("count", len(out)))
	return out
}
