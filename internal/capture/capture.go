// Package capture acquires the visitor's photo.
//
// Booth cameras are usually tethered to software that drops each shot into a
// folder; HotFolder waits for the next image to land there. StaticFile serves a
// fixed image and is meant for demos.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Photo is a captured image.
type Photo struct {
	Name string
	Data []byte
}

// Source produces one photo per call.
type Source interface {
	Capture(ctx context.Context) (Photo, error)
}

// ErrNoSource is returned when neither a folder nor a file is configured.
var ErrNoSource = errors.New("capture: no capture source configured")

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

func isImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// New picks a source: dir wins over file.
func New(dir, file string) (Source, error) {
	switch {
	case strings.TrimSpace(dir) != "":
		return &HotFolder{Dir: dir}, nil
	case strings.TrimSpace(file) != "":
		return StaticFile{Path: file}, nil
	default:
		return nil, ErrNoSource
	}
}

// StaticFile always returns the same image.
type StaticFile struct {
	Path string
}

func (s StaticFile) Capture(ctx context.Context) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return Photo{}, fmt.Errorf("capture: read %s: %w", s.Path, err)
	}
	return Photo{Name: filepath.Base(s.Path), Data: b}, nil
}

// HotFolder waits for a new image file in Dir. A file is taken once it has seen no
// further writes for Settle (default 250ms).
type HotFolder struct {
	Dir    string
	Settle time.Duration

	ready func() // test hook, called once the watch is armed
}

func (h *HotFolder) Capture(ctx context.Context) (Photo, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Photo{}, fmt.Errorf("capture: watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(h.Dir); err != nil {
		return Photo{}, fmt.Errorf("capture: watch %s: %w", h.Dir, err)
	}
	if h.ready != nil {
		h.ready()
	}

	settle := h.Settle
	if settle <= 0 {
		settle = 250 * time.Millisecond
	}
	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	pending := ""
	for {
		select {
		case <-ctx.Done():
			return Photo{}, ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return Photo{}, fmt.Errorf("capture: watcher closed")
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !isImage(ev.Name) {
				continue
			}
			pending = ev.Name
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return Photo{}, fmt.Errorf("capture: watcher closed")
			}
			return Photo{}, fmt.Errorf("capture: watch: %w", err)
		case <-timer.C:
			b, err := os.ReadFile(pending)
			if err != nil {
				return Photo{}, fmt.Errorf("capture: read %s: %w", pending, err)
			}
			return Photo{Name: filepath.Base(pending), Data: b}, nil
		}
	}
}
