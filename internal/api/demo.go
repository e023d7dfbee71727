package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Demo is an offline backend for running the kiosk without a server. Templates are
// image files under TemplatesDir/<gender>/, prints are written to SpoolDir and the
// swap step echoes the captured photo back.
type Demo struct {
	TemplatesDir string
	SpoolDir     string

	now func() time.Time
}

func NewDemo(templatesDir, spoolDir string) *Demo {
	return &Demo{TemplatesDir: templatesDir, SpoolDir: spoolDir, now: time.Now}
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

func (d *Demo) SaveUserData(ctx context.Context, u UserData) (SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return SaveResult{}, err
	}
	return SaveResult{ID: uuid.NewString(), Message: "saved offline"}, nil
}

func (d *Demo) FetchTemplates(ctx context.Context, gender string) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(d.TemplatesDir, filepath.Base(strings.TrimSpace(gender)))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("demo: list templates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	out := make([]Template, 0, len(names))
	for _, n := range names {
		out = append(out, Template{ImageURL: filepath.Join(dir, n)})
	}
	return out, nil
}

func (d *Demo) PrintImage(ctx context.Context, image []byte, printer, size string) (PrintResponse, error) {
	if err := ctx.Err(); err != nil {
		return PrintResponse{}, err
	}
	if err := os.MkdirAll(d.SpoolDir, 0o755); err != nil {
		return PrintResponse{}, fmt.Errorf("demo: mkdir spool: %w", err)
	}
	if printer == "" {
		printer = "default"
	}
	name := fmt.Sprintf("%s-%s-%s%s", d.now().UTC().Format("20060102T150405.000"), filepath.Base(printer), filepath.Base(size), extFor(image))
	path := filepath.Join(d.SpoolDir, name)
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return PrintResponse{}, fmt.Errorf("demo: spool print: %w", err)
	}
	return PrintResponse{Message: "spooled " + name}, nil
}

func (d *Demo) Swap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	if err := ctx.Err(); err != nil {
		return SwapResult{}, err
	}
	if len(req.Photo) == 0 {
		return SwapResult{}, fmt.Errorf("demo: empty photo")
	}
	return SwapResult{SwappedImage: DataURL(http.DetectContentType(req.Photo), req.Photo)}, nil
}

func (d *Demo) LoadImage(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isRemote(ref) {
		return nil, fmt.Errorf("demo: remote images unavailable offline")
	}
	return readImageRef(ref)
}

func extFor(b []byte) string {
	switch http.DetectContentType(b) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
