package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/database/repository"
)

var (
	// ErrNoImage means there is nothing to print; no request is made.
	ErrNoImage = errors.New("no image found to print")
	// ErrPrintFailed wraps any failure after the image was found.
	ErrPrintFailed = errors.New("failed to print image")
	// ErrNoPrintMessage is a print reply without a message. It matches ErrPrintFailed too.
	ErrNoPrintMessage = fmt.Errorf("%w: print service returned no message", ErrPrintFailed)
)

// PrintService submits the result image to the print service.
type PrintService struct {
	Backend api.Backend
	Jobs    *repository.PrintJobRepo
	Log     *zap.Logger
}

// Print resolves imageRef and submits it. Timeout: 30s. No retries.
func (s *PrintService) Print(ctx context.Context, sessionID, imageRef, printer, size string) (api.PrintResponse, error) {
	log := logger(s.Log).With(zap.String("session", sessionID), zap.String("printer", printer), zap.String("size", size))
	if strings.TrimSpace(imageRef) == "" {
		log.Warn("print requested without image")
		return api.PrintResponse{}, ErrNoImage
	}
	if s.Backend == nil {
		return api.PrintResponse{}, fmt.Errorf("%w: backend not configured", ErrPrintFailed)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	img, err := s.Backend.LoadImage(ctx, imageRef)
	if err != nil {
		log.Error("error during print: load image", zap.Error(err))
		return api.PrintResponse{}, fmt.Errorf("%w: %v", ErrPrintFailed, err)
	}

	jobID := uuid.NewString()
	if s.Jobs != nil {
		if err := s.Jobs.Insert(ctx, repository.PrintJob{ID: jobID, SessionID: sessionID, Printer: printer, Size: size, Status: repository.StatusPending}); err != nil {
			log.Warn("record print job", zap.Error(err))
		}
	}

	resp, err := s.Backend.PrintImage(ctx, img, printer, size)
	switch {
	case err != nil:
		log.Error("error during print", zap.Error(err))
		s.finish(ctx, log, jobID, repository.StatusFailed, err.Error())
		return api.PrintResponse{}, fmt.Errorf("%w: %v", ErrPrintFailed, err)
	case strings.TrimSpace(resp.Message) == "":
		log.Error("print service returned no message")
		s.finish(ctx, log, jobID, repository.StatusFailed, "")
		return api.PrintResponse{}, ErrNoPrintMessage
	}
	log.Info("printed", zap.String("job", jobID), zap.String("message", resp.Message))
	s.finish(ctx, log, jobID, repository.StatusSent, resp.Message)
	return resp, nil
}

func (s *PrintService) finish(ctx context.Context, log *zap.Logger, id, status, msg string) {
	if s.Jobs == nil {
		return
	}
	var m *string
	if msg != "" {
		m = &msg
	}
	if err := s.Jobs.Finish(ctx, id, status, m); err != nil {
		log.Warn("record print result", zap.Error(err))
	}
}
