package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/carousel"
	"github.com/jask/photobooth/internal/service"
	"github.com/jask/photobooth/internal/session"
	"github.com/jask/photobooth/internal/wizard"
)

// App is the kiosk program: a landing screen followed by the wizard steps.
type App struct {
	ctx      context.Context
	services Services
	opts     Options
	log      *zap.Logger
	session  *session.Session
	wizard   *wizard.Machine
	views    [wizard.StepCount]stepView

	// contact step
	name       textinput.Model
	phone      textinput.Model
	phoneFocus bool

	// gender step
	genderCursor int

	// template step
	templates        *carousel.Carousel[api.Template]
	templatesLoading bool

	// capture step
	capturing bool

	// result step
	modal     modalState
	printing  bool
	printSize string
	toast     bool
	toastSeq  uint64

	alert  string
	status string
	width  int
	height int
}

// Services are the side effects the steps trigger.
type Services struct {
	Contacts  *service.ContactService
	Templates *service.TemplateService
	Prints    *service.PrintService
	Capture   *service.CaptureService
}

// Options tune pacing and printing.
type Options struct {
	Timing    wizard.Timing
	Toast     time.Duration
	Printer   string
	PrintSize string
	// PrintSizes offered on the print prompt; the first entry is used when PrintSize is empty.
	PrintSizes []string
	// SavePrint persists the operator's print choice. Optional.
	SavePrint func(printer, size string) error
}

type modalState string

const (
	modalNone  modalState = ""
	modalQR    modalState = "qr"
	modalPrint modalState = "print"
)

// New builds the app around sess. Values already in sess (a visitor who was typing
// before a restart) prefill the contact form.
func New(ctx context.Context, sess *session.Session, services Services, opts Options, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if len(opts.PrintSizes) == 0 {
		opts.PrintSizes = []string{"4x6"}
	}
	a := &App{
		ctx:       ctx,
		services:  services,
		opts:      opts,
		log:       log,
		session:   sess,
		wizard:    wizard.New(opts.Timing),
		templates: carousel.New[api.Template](nil),
		printSize: opts.PrintSize,
	}
	if a.printSize == "" {
		a.printSize = opts.PrintSizes[0]
	}
	a.views = a.stepViews()
	a.name = newInput("Name", 64)
	a.phone = newInput("Phone", 20)
	c := sess.Contact()
	a.name.SetValue(c.Name)
	a.phone.SetValue(c.Phone)
	if g := sess.Gender(); g != "" {
		for i, v := range service.Genders {
			if v == g {
				a.genderCursor = i
			}
		}
	}
	return a
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 32
	ti.Prompt = ""
	return ti
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.alert != "" {
			a.alert = ""
			return a, nil
		}
		if !a.wizard.State().Started {
			return a.handleLandingKey(m)
		}
		return a.views[a.wizard.Step()].keys(m)
	case transitionDueMsg:
		return a, a.applyTransition(m.seq)
	case transitionSettledMsg:
		a.wizard.Settle(m.seq)
		return a, nil
	case contactSubmittedMsg:
		if m.err == nil && m.sessionID == a.session.ID() {
			a.session.ClearContact()
		}
		return a, nil
	case templatesMsg:
		if m.sessionID != a.session.ID() || m.gender != a.session.Gender() {
			return a, nil
		}
		a.templatesLoading = false
		a.templates = carousel.New(m.list)
		a.selectTemplate(a.templates.Current())
		return a, nil
	case swapDoneMsg:
		return a, a.finishCapture(m)
	case printDoneMsg:
		return a, a.finishPrint(m)
	case toastExpiredMsg:
		if m.seq == a.toastSeq {
			a.toast = false
		}
		return a, nil
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleLandingKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter, tea.KeySpace:
		a.wizard.Start()
		a.log.Info("session started", zap.String("session", a.session.ID()))
		return a, a.focusName()
	}
	return a, nil
}

// next is the forward navigation entry point of every step.
func (a *App) next() tea.Cmd {
	if !a.wizard.CanAdvance(a.session.Contact()) {
		return nil
	}
	tr, ok := a.wizard.BeginNext()
	if !ok {
		return nil
	}
	return after(tr.Delay, transitionDueMsg{seq: tr.Seq})
}

func (a *App) back() tea.Cmd {
	tr, ok := a.wizard.BeginBack()
	if !ok {
		return nil
	}
	return after(tr.Delay, transitionDueMsg{seq: tr.Seq})
}

func (a *App) applyTransition(seq uint64) tea.Cmd {
	mv, ok := a.wizard.Apply(seq)
	if !ok {
		return nil
	}
	a.status = ""
	a.log.Debug("step", zap.Stringer("from", mv.From), zap.Stringer("to", mv.To), zap.Stringer("direction", mv.Direction))
	cmds := []tea.Cmd{after(mv.Settle, transitionSettledMsg{seq: seq})}
	if mv.LeftContact {
		a.name.Blur()
		a.phone.Blur()
		cmds = append(cmds, a.submitContactCmd())
	}
	if mv.From != mv.To {
		if enter := a.views[mv.To].enter; enter != nil {
			cmds = append(cmds, enter())
		}
	}
	return tea.Batch(cmds...)
}

// reset returns to the landing screen for the next visitor.
func (a *App) reset() tea.Cmd {
	a.log.Info("session finished", zap.String("session", a.session.ID()))
	a.wizard.Reset()
	a.session.Clear()
	a.name.SetValue("")
	a.phone.SetValue("")
	a.phoneFocus = false
	a.genderCursor = 0
	a.templates = carousel.New[api.Template](nil)
	a.templatesLoading = false
	a.capturing = false
	a.modal = modalNone
	a.printing = false
	a.toast = false
	a.alert = ""
	a.status = ""
	return nil
}

// commands

func (a *App) submitContactCmd() tea.Cmd {
	sessionID := a.session.ID()
	contact := a.session.Contact()
	svc := a.services.Contacts
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := svc.Submit(a.ctx, sessionID, contact)
		return contactSubmittedMsg{sessionID: sessionID, err: err}
	}
}

func after(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// messages
type transitionDueMsg struct{ seq uint64 }

type transitionSettledMsg struct{ seq uint64 }

type contactSubmittedMsg struct {
	sessionID string
	err       error
}

type templatesMsg struct {
	sessionID string
	gender    string
	list      []api.Template
}

type swapDoneMsg struct {
	sessionID string
	result    api.SwapResult
	err       error
}

type printDoneMsg struct {
	sessionID string
	resp      api.PrintResponse
	err       error
}

type toastExpiredMsg struct{ seq uint64 }

type errMsg struct{ error }
