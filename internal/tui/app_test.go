package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/capture"
	"github.com/jask/photobooth/internal/service"
	"github.com/jask/photobooth/internal/session"
	"github.com/jask/photobooth/internal/wizard"
)

type fakeBackend struct {
	saveErr    error
	templates  []api.Template
	byGender   map[string][]api.Template
	swapRes    api.SwapResult
	printRes   api.PrintResponse
	printErr   error
	image      []byte
	saveCalls  int
	fetchCalls int
	printCalls int
	loadCalls  int
	lastGender string
	lastSize   string
}

func (f *fakeBackend) SaveUserData(context.Context, api.UserData) (api.SaveResult, error) {
	f.saveCalls++
	return api.SaveResult{ID: "u1"}, f.saveErr
}

func (f *fakeBackend) FetchTemplates(_ context.Context, gender string) ([]api.Template, error) {
	f.fetchCalls++
	f.lastGender = gender
	if f.byGender != nil {
		return f.byGender[gender], nil
	}
	return f.templates, nil
}

func (f *fakeBackend) PrintImage(_ context.Context, _ []byte, _, size string) (api.PrintResponse, error) {
	f.printCalls++
	f.lastSize = size
	return f.printRes, f.printErr
}

func (f *fakeBackend) Swap(context.Context, api.SwapRequest) (api.SwapResult, error) {
	return f.swapRes, nil
}

func (f *fakeBackend) LoadImage(context.Context, string) ([]byte, error) {
	f.loadCalls++
	return f.image, nil
}

type stillCamera struct{}

func (stillCamera) Capture(context.Context) (capture.Photo, error) {
	return capture.Photo{Name: "shot.jpg", Data: []byte("jpeg")}, nil
}

func newTestApp(t *testing.T, b *fakeBackend, opts Options) *App {
	t.Helper()
	ctx := context.Background()
	sess := session.New(ctx, nil, nil)
	svc := Services{
		Contacts:  &service.ContactService{Backend: b},
		Templates: &service.TemplateService{Backend: b},
		Prints:    &service.PrintService{Backend: b},
		Capture:   &service.CaptureService{Source: stillCamera{}, Backend: b},
	}
	if len(opts.PrintSizes) == 0 {
		opts.PrintSizes = []string{"4x6", "5x7"}
	}
	return New(ctx, sess, svc, opts, nil)
}

func fiveTemplates() []api.Template {
	var out []api.Template
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		out = append(out, api.Template{ImageURL: "http://t/" + n + ".png"})
	}
	return out
}

// exec runs cmd, giving up on commands that wait on something other than our own timers.
func exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case m := <-ch:
		return m
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// run executes cmd and feeds every message it produces back into the app.
func run(a *App, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch m := exec(c).(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		default:
			_, next := a.Update(m)
			queue = append(queue, next)
		}
	}
}

func press(a *App, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := a.Update(msg)
	return cmd
}

func pressRun(a *App, keys ...string) {
	for _, k := range keys {
		run(a, press(a, k))
	}
}

// toStep drives the app from the landing screen until it sits on target.
func toStep(t *testing.T, a *App, target wizard.Step) {
	t.Helper()
	pressRun(a, "enter")
	if target == wizard.StepContact {
		return
	}
	pressRun(a, "Jo", "tab", "555", "enter")
	for a.wizard.Step() < target {
		before := a.wizard.Step()
		pressRun(a, "enter")
		require.NotEqual(t, before, a.wizard.Step(), "stuck on %s", before)
	}
	require.Equal(t, target, a.wizard.Step())
}

func TestLandingStartsAtContact(t *testing.T) {
	a := newTestApp(t, &fakeBackend{}, Options{})
	require.Contains(t, a.View(), "Tap to Start")
	require.False(t, a.wizard.State().Started)

	pressRun(a, "enter")
	st := a.wizard.State()
	require.True(t, st.Started)
	require.Equal(t, wizard.StepContact, st.Step)
}

func TestNextDisabledUntilContactComplete(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(t, b, Options{})
	pressRun(a, "enter", "Jo")

	// enter on the name field jumps to phone instead of advancing
	pressRun(a, "enter")
	require.Equal(t, wizard.StepContact, a.wizard.Step())
	require.True(t, a.phoneFocus)

	pressRun(a, "   ", "enter")
	require.Equal(t, wizard.StepContact, a.wizard.Step())
	require.Zero(t, b.saveCalls)
	require.Equal(t, "Jo", a.session.Get(session.KeyName))
}

func TestDoubleNextAdvancesOnce(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(t, b, Options{})
	pressRun(a, "enter", "Jo", "tab", "555")

	first := press(a, "enter")
	second := press(a, "enter")
	require.NotNil(t, first)
	require.Nil(t, second)
	require.True(t, a.wizard.State().Transitioning)

	run(a, first)
	require.Equal(t, wizard.StepGender, a.wizard.Step())
	require.False(t, a.wizard.State().Transitioning)
	require.Equal(t, 1, b.saveCalls)
	require.Empty(t, a.session.Get(session.KeyName))
	require.Empty(t, a.session.Get(session.KeyPhone))
}

func TestContactFailureDoesNotBlock(t *testing.T) {
	b := &fakeBackend{saveErr: errors.New("backend down")}
	a := newTestApp(t, b, Options{})
	toStep(t, a, wizard.StepGender)

	require.Equal(t, 1, b.saveCalls)
	require.Equal(t, "Jo", a.session.Get(session.KeyName))
}

func TestBackStopsAtGender(t *testing.T) {
	a := newTestApp(t, &fakeBackend{}, Options{})
	toStep(t, a, wizard.StepTemplate)

	pressRun(a, "esc")
	require.Equal(t, wizard.StepGender, a.wizard.Step())
	pressRun(a, "esc")
	require.Equal(t, wizard.StepGender, a.wizard.Step())
}

func TestGenderChoiceDrivesTemplateFetch(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(t, b, Options{})
	toStep(t, a, wizard.StepGender)

	pressRun(a, "right", "enter")
	require.Equal(t, wizard.StepTemplate, a.wizard.Step())
	require.Equal(t, "women", a.session.Gender())
	require.Equal(t, 1, b.fetchCalls)
	require.Equal(t, "women", b.lastGender)
}

func TestTemplatesEmptyState(t *testing.T) {
	a := newTestApp(t, &fakeBackend{}, Options{})
	toStep(t, a, wizard.StepTemplate)

	require.Contains(t, a.View(), "No templates available.")
	require.Empty(t, a.session.SelectedTemplate())
}

func TestCarouselShowsThreeAndSelects(t *testing.T) {
	a := newTestApp(t, &fakeBackend{templates: fiveTemplates()}, Options{})
	toStep(t, a, wizard.StepTemplate)

	view := a.View()
	require.Contains(t, view, "e.png")
	require.Contains(t, view, "a.png")
	require.Contains(t, view, "b.png")
	require.NotContains(t, view, "c.png")
	require.Equal(t, "http://t/a.png", a.session.SelectedTemplate())

	pressRun(a, "left")
	require.Equal(t, "http://t/e.png", a.session.SelectedTemplate())
	pressRun(a, "right", "right")
	require.Equal(t, "http://t/b.png", a.session.SelectedTemplate())
}

func TestCaptureStoresResultAndAdvances(t *testing.T) {
	info, _ := json.Marshal(map[string]string{"gallery_url": "https://drive.example/g/1"})
	b := &fakeBackend{
		templates: fiveTemplates(),
		swapRes:   api.SwapResult{SwappedImage: "http://t/out.png", QRCode: "data:image/png;base64,AA==", DriveInfo: info},
	}
	a := newTestApp(t, b, Options{})
	toStep(t, a, wizard.StepResult)

	require.Equal(t, "http://t/out.png", a.session.SwappedPhoto())
	require.NotEmpty(t, a.session.QRCode())
	got, err := a.session.DriveInfo()
	require.NoError(t, err)
	require.Equal(t, "https://drive.example/g/1", got.GalleryURL)

	pressRun(a, "q")
	require.Contains(t, a.View(), "Access Your Photo Gallery")
	require.Contains(t, a.View(), "https://drive.example/g/1")
}

func TestCaptureWithoutTemplateStays(t *testing.T) {
	a := newTestApp(t, &fakeBackend{}, Options{})
	toStep(t, a, wizard.StepCapture)

	pressRun(a, "enter")
	require.Equal(t, wizard.StepCapture, a.wizard.Step())
	require.Contains(t, a.View(), "pick a template")
}

func resultApp(t *testing.T, b *fakeBackend, opts Options) *App {
	t.Helper()
	b.templates = fiveTemplates()
	if b.swapRes.SwappedImage == "" {
		b.swapRes.SwappedImage = "http://t/out.png"
	}
	a := newTestApp(t, b, opts)
	toStep(t, a, wizard.StepResult)
	return a
}

func TestQRModalWithoutCode(t *testing.T) {
	a := resultApp(t, &fakeBackend{}, Options{})
	pressRun(a, "q")
	require.Contains(t, a.View(), "QR Code Not Available")
	pressRun(a, "q")
	require.NotContains(t, a.View(), "QR Code Not Available")
}

func TestPrintWithoutImageAlerts(t *testing.T) {
	b := &fakeBackend{}
	a := resultApp(t, b, Options{})
	a.session.Delete(session.KeySwappedPhoto)

	pressRun(a, "p", "y")
	require.Contains(t, a.View(), "No image found to print!")
	require.Zero(t, b.loadCalls)
	require.Zero(t, b.printCalls)

	// any key dismisses the alert
	pressRun(a, "x")
	require.NotContains(t, a.View(), "No image found to print!")
}

func TestPrintSuccessShowsToast(t *testing.T) {
	var saved []string
	b := &fakeBackend{image: []byte("png"), printRes: api.PrintResponse{Message: "queued"}}
	a := resultApp(t, b, Options{
		Toast:     time.Hour,
		SavePrint: func(_, size string) error { saved = append(saved, size); return nil },
	})

	pressRun(a, "p", "s", "y")
	require.Equal(t, 1, b.printCalls)
	require.Equal(t, "5x7", b.lastSize)
	require.Equal(t, []string{"5x7"}, saved)
	require.Equal(t, modalNone, a.modal)
	require.Contains(t, a.View(), "Printed!")

	a.Update(toastExpiredMsg{seq: a.toastSeq})
	require.NotContains(t, a.View(), "Printed!")
}

func TestPrintFailureAlerts(t *testing.T) {
	b := &fakeBackend{image: []byte("png")}
	a := resultApp(t, b, Options{})
	pressRun(a, "p", "y")
	require.Contains(t, a.View(), "Failed to print image.")

	b.printErr = errors.New("paper jam")
	pressRun(a, "x", "y")
	require.Contains(t, a.View(), "An error occurred while printing.")

	// the alert text follows the cause even when it arrives wrapped
	pressRun(a, "x")
	a.Update(printDoneMsg{sessionID: a.session.ID(), err: fmt.Errorf("kiosk: %w", service.ErrNoPrintMessage)})
	require.Contains(t, a.View(), "Failed to print image.")
}

func TestNewSessionResets(t *testing.T) {
	a := resultApp(t, &fakeBackend{}, Options{})
	id := a.session.ID()

	pressRun(a, "n")
	st := a.wizard.State()
	require.False(t, st.Started)
	require.Zero(t, a.session.Len())
	require.NotEqual(t, id, a.session.ID())
	require.True(t, strings.Contains(a.View(), "Tap to Start"))
}

func TestStaleTemplatesIgnoredAfterReset(t *testing.T) {
	a := resultApp(t, &fakeBackend{}, Options{})
	old := a.session.ID()
	pressRun(a, "n")

	a.Update(templatesMsg{sessionID: old, list: fiveTemplates()})
	require.True(t, a.templates.Empty())
}

func TestGenderChangeDropsEarlierTemplate(t *testing.T) {
	b := &fakeBackend{byGender: map[string][]api.Template{"men": fiveTemplates()}}
	a := newTestApp(t, b, Options{})
	toStep(t, a, wizard.StepTemplate)
	require.Equal(t, "http://t/a.png", a.session.SelectedTemplate())

	pressRun(a, "esc")
	require.Equal(t, wizard.StepGender, a.wizard.Step())
	pressRun(a, "right", "enter")
	require.Equal(t, wizard.StepTemplate, a.wizard.Step())
	require.Equal(t, "women", a.session.Gender())
	require.Contains(t, a.View(), "No templates available.")
	require.Empty(t, a.session.SelectedTemplate())

	pressRun(a, "enter", "enter")
	require.Equal(t, wizard.StepCapture, a.wizard.Step())
	require.Contains(t, a.View(), "pick a template")
}

func TestNextWaitsForTemplates(t *testing.T) {
	a := newTestApp(t, &fakeBackend{templates: fiveTemplates()}, Options{})
	toStep(t, a, wizard.StepTemplate)

	// a reload in flight leaves nothing selected and holds the step
	_ = a.loadTemplates()
	require.Empty(t, a.session.SelectedTemplate())
	require.Nil(t, press(a, "enter"))
	require.Equal(t, wizard.StepTemplate, a.wizard.Step())
	require.False(t, a.wizard.State().Transitioning)

	a.Update(templatesMsg{sessionID: a.session.ID(), gender: a.session.Gender(), list: fiveTemplates()})
	require.Equal(t, "http://t/a.png", a.session.SelectedTemplate())
	pressRun(a, "enter")
	require.Equal(t, wizard.StepCapture, a.wizard.Step())
}

func TestBackHintOnlyWhereBackMoves(t *testing.T) {
	a := newTestApp(t, &fakeBackend{templates: fiveTemplates()}, Options{})
	toStep(t, a, wizard.StepGender)
	require.NotContains(t, a.View(), "[esc] Back")

	pressRun(a, "enter")
	require.Equal(t, wizard.StepTemplate, a.wizard.Step())
	require.Contains(t, a.View(), "[esc] Back")
}
