package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/capture"
	"github.com/jask/photobooth/internal/database"
)

// fakeBackend records calls and returns canned values.
type fakeBackend struct {
	saveErr    error
	saveRes    api.SaveResult
	templates  []api.Template
	fetchErr   error
	printRes   api.PrintResponse
	printErr   error
	swapRes    api.SwapResult
	swapErr    error
	image      []byte
	loadErr    error
	saveCalls  int
	fetchCalls int
	printCalls int
	loadCalls  int
	lastSaved  api.UserData
	lastPrint  struct{ printer, size string }
	lastSwap   api.SwapRequest
}

func (f *fakeBackend) SaveUserData(_ context.Context, u api.UserData) (api.SaveResult, error) {
	f.saveCalls++
	f.lastSaved = u
	return f.saveRes, f.saveErr
}

func (f *fakeBackend) FetchTemplates(_ context.Context, _ string) ([]api.Template, error) {
	f.fetchCalls++
	return f.templates, f.fetchErr
}

func (f *fakeBackend) PrintImage(_ context.Context, _ []byte, printer, size string) (api.PrintResponse, error) {
	f.printCalls++
	f.lastPrint.printer, f.lastPrint.size = printer, size
	return f.printRes, f.printErr
}

func (f *fakeBackend) Swap(_ context.Context, req api.SwapRequest) (api.SwapResult, error) {
	f.lastSwap = req
	return f.swapRes, f.swapErr
}

func (f *fakeBackend) LoadImage(_ context.Context, _ string) ([]byte, error) {
	f.loadCalls++
	return f.image, f.loadErr
}

type fakeSource struct {
	photo capture.Photo
	err   error
}

func (s fakeSource) Capture(context.Context) (capture.Photo, error) { return s.photo, s.err }

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
