package api

import (
	"context"
	"encoding/json"
)

// Backend is the booth server as seen by the kiosk.
type Backend interface {
	SaveUserData(ctx context.Context, u UserData) (SaveResult, error)
	FetchTemplates(ctx context.Context, gender string) ([]Template, error)
	PrintImage(ctx context.Context, image []byte, printer, size string) (PrintResponse, error)
	Swap(ctx context.Context, req SwapRequest) (SwapResult, error)
	LoadImage(ctx context.Context, ref string) ([]byte, error)
}

type UserData struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type SaveResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Template is one selectable face-swap template.
type Template struct {
	ImageURL string `json:"imageUrl"`
}

type PrintResponse struct {
	Message string `json:"message"`
}

// SwapRequest carries the captured photo and the chosen template.
type SwapRequest struct {
	Photo       []byte
	PhotoName   string
	TemplateURL string
}

// SwapResult is what the swap endpoint hands back. DriveInfo is kept raw so the
// result step can decide how to treat a malformed payload.
type SwapResult struct {
	SwappedImage string          `json:"swapped_image"`
	QRCode       string          `json:"qr_code"`
	DriveInfo    json.RawMessage `json:"google_drive_info"`
}
