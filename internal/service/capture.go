package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/capture"
)

var (
	// ErrNoTemplate means the capture step was reached without a chosen template.
	ErrNoTemplate = errors.New("no template selected")
	// ErrSwapFailed wraps capture and swap failures.
	ErrSwapFailed = errors.New("face swap failed")
)

// CaptureService takes the photo and asks the backend to swap it onto the template.
type CaptureService struct {
	Source  capture.Source
	Backend api.Backend
	Log     *zap.Logger
	// Timeout bounds the wait for the camera plus the swap call. Default 2m.
	Timeout time.Duration
}

func (s *CaptureService) CaptureAndSwap(ctx context.Context, templateURL string) (api.SwapResult, error) {
	log := logger(s.Log).With(zap.String("template", templateURL))
	if strings.TrimSpace(templateURL) == "" {
		return api.SwapResult{}, ErrNoTemplate
	}
	if s.Source == nil || s.Backend == nil {
		return api.SwapResult{}, fmt.Errorf("%w: %v", ErrSwapFailed, capture.ErrNoSource)
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	photo, err := s.Source.Capture(ctx)
	if err != nil {
		log.Error("capture", zap.Error(err))
		return api.SwapResult{}, fmt.Errorf("%w: %v", ErrSwapFailed, err)
	}
	log.Debug("photo captured", zap.String("name", photo.Name), zap.Int("bytes", len(photo.Data)))

	res, err := s.Backend.Swap(ctx, api.SwapRequest{Photo: photo.Data, PhotoName: photo.Name, TemplateURL: templateURL})
	if err != nil {
		log.Error("swap", zap.Error(err))
		return api.SwapResult{}, fmt.Errorf("%w: %v", ErrSwapFailed, err)
	}
	if strings.TrimSpace(res.SwappedImage) == "" {
		log.Error("swap returned no image")
		return api.SwapResult{}, ErrSwapFailed
	}
	log.Info("swap complete", zap.Bool("qr", res.QRCode != ""))
	return res, nil
}
