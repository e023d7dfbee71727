package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/carousel"
	"github.com/jask/photobooth/internal/service"
	"github.com/jask/photobooth/internal/session"
	"github.com/jask/photobooth/internal/wizard"
)

// stepView binds one wizard step to its key handler, renderer and entry hook.
type stepView struct {
	title  string
	keys   func(tea.KeyMsg) (tea.Model, tea.Cmd)
	render func() string
	// enter runs when a transition lands on the step.
	enter func() tea.Cmd
}

func (a *App) stepViews() [wizard.StepCount]stepView {
	return [wizard.StepCount]stepView{
		wizard.StepContact:  {title: "Your details", keys: a.contactKeys, render: a.renderContact, enter: a.focusName},
		wizard.StepGender:   {title: "Choose a style", keys: a.genderKeys, render: a.renderGender},
		wizard.StepTemplate: {title: "Pick a template", keys: a.templateKeys, render: a.renderTemplates, enter: a.loadTemplates},
		wizard.StepCapture:  {title: "Smile!", keys: a.captureKeys, render: a.renderCapture},
		wizard.StepResult:   {title: "Your photo", keys: a.resultKeys, render: a.renderResult},
	}
}

// contact

func (a *App) focusName() tea.Cmd {
	a.phoneFocus = false
	a.phone.Blur()
	return a.name.Focus()
}

func (a *App) focusPhone() tea.Cmd {
	a.phoneFocus = true
	a.name.Blur()
	return a.phone.Focus()
}

func (a *App) contactKeys(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		if a.phoneFocus {
			return a, a.focusName()
		}
		return a, a.focusPhone()
	case tea.KeyEnter:
		if !a.phoneFocus && strings.TrimSpace(a.phone.Value()) == "" {
			return a, a.focusPhone()
		}
		return a, a.next()
	}
	if a.wizard.State().Transitioning {
		return a, nil
	}
	var cmd tea.Cmd
	if a.phoneFocus {
		a.phone, cmd = a.phone.Update(m)
	} else {
		a.name, cmd = a.name.Update(m)
	}
	a.session.SetContact(session.Contact{Name: a.name.Value(), Phone: a.phone.Value()})
	return a, cmd
}

func (a *App) renderContact() string {
	var b strings.Builder
	b.WriteString(fieldLabel("Name", !a.phoneFocus) + a.name.View() + "\n")
	b.WriteString(fieldLabel("Phone", a.phoneFocus) + a.phone.View() + "\n\n")
	b.WriteString(button("Next", a.wizard.CanAdvance(a.session.Contact())))
	return b.String()
}

func fieldLabel(label string, focused bool) string {
	s := labelStyle
	if focused {
		s = focusedLabelStyle
	}
	return s.Render(fmt.Sprintf("%-6s", label)) + " "
}

// gender

func (a *App) genderKeys(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "left", "h", "up", "k":
		a.moveGender(-1)
	case "right", "l", "down", "j":
		a.moveGender(1)
	case "enter", " ":
		a.session.Set(session.KeyGender, service.Genders[a.genderCursor])
		return a, a.next()
	case "esc", "backspace":
		return a, a.back()
	}
	return a, nil
}

func (a *App) moveGender(delta int) {
	if a.wizard.State().Transitioning {
		return
	}
	n := len(service.Genders)
	a.genderCursor = ((a.genderCursor+delta)%n + n) % n
	a.session.Set(session.KeyGender, service.Genders[a.genderCursor])
}

func (a *App) renderGender() string {
	var parts []string
	for i, g := range service.Genders {
		label := strings.ToUpper(g)
		if i == a.genderCursor {
			parts = append(parts, selectedStyle.Render("[ "+label+" ]"))
		} else {
			parts = append(parts, mutedStyle.Render("  "+label+"  "))
		}
	}
	return strings.Join(parts, "   ")
}

// template

// loadTemplates drops any earlier choice so a template from another gender never
// reaches the capture step.
func (a *App) loadTemplates() tea.Cmd {
	a.templates = carousel.New[api.Template](nil)
	a.templatesLoading = true
	a.session.Delete(session.KeySelectedTemplate)
	sessionID, gender := a.session.ID(), a.session.Gender()
	svc := a.services.Templates
	return func() tea.Msg {
		var list []api.Template
		if svc != nil {
			list = svc.Fetch(a.ctx, gender)
		}
		return templatesMsg{sessionID: sessionID, gender: gender, list: list}
	}
}

func (a *App) selectTemplate(t api.Template, ok bool) {
	if ok {
		a.session.Set(session.KeySelectedTemplate, t.ImageURL)
	}
}

func (a *App) templateKeys(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "left", "h":
		if !a.wizard.State().Transitioning {
			a.selectTemplate(a.templates.Prev())
		}
	case "right", "l":
		if !a.wizard.State().Transitioning {
			a.selectTemplate(a.templates.Next())
		}
	case "enter":
		if a.templatesLoading {
			return a, nil
		}
		return a, a.next()
	case "esc", "backspace":
		return a, a.back()
	}
	return a, nil
}

func (a *App) renderTemplates() string {
	if a.templatesLoading {
		return mutedStyle.Render("Loading templates...")
	}
	slots := a.templates.Visible()
	if len(slots) == 0 {
		return "No templates available."
	}
	cells := make([]string, 0, len(slots))
	for _, s := range slots {
		name := templateLabel(s.Item.ImageURL)
		if s.Position == carousel.Center {
			cells = append(cells, selectedStyle.Render("[ "+name+" ]"))
		} else {
			cells = append(cells, mutedStyle.Render("  "+name+"  "))
		}
	}
	return fmt.Sprintf("%s\n\n%s", strings.Join(cells, "  "),
		mutedStyle.Render(fmt.Sprintf("%d of %d", a.templates.Index()+1, a.templates.Len())))
}

// templateLabel keeps the last path element of an image reference.
func templateLabel(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 && i < len(ref)-1 {
		ref = ref[i+1:]
	}
	if i := strings.IndexAny(ref, "?#"); i > 0 {
		ref = ref[:i]
	}
	if len(ref) > 24 {
		ref = ref[:21] + "..."
	}
	return ref
}

// capture

func (a *App) captureKeys(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "enter", " ":
		return a, a.captureCmd()
	case "esc", "backspace":
		if a.capturing {
			return a, nil
		}
		return a, a.back()
	}
	return a, nil
}

func (a *App) captureCmd() tea.Cmd {
	if a.capturing || a.wizard.State().Transitioning {
		return nil
	}
	svc := a.services.Capture
	if svc == nil {
		a.status = "Camera is not configured."
		return nil
	}
	a.capturing = true
	a.status = ""
	sessionID, tmpl := a.session.ID(), a.session.SelectedTemplate()
	return func() tea.Msg {
		res, err := svc.CaptureAndSwap(a.ctx, tmpl)
		return swapDoneMsg{sessionID: sessionID, result: res, err: err}
	}
}

func (a *App) finishCapture(m swapDoneMsg) tea.Cmd {
	if m.sessionID != a.session.ID() {
		return nil
	}
	a.capturing = false
	if m.err != nil {
		if errors.Is(m.err, service.ErrNoTemplate) {
			a.status = "Please go back and pick a template."
		} else {
			a.status = "Something went wrong. Press enter to try again."
		}
		return nil
	}
	a.status = ""
	a.session.Set(session.KeySwappedPhoto, m.result.SwappedImage)
	a.session.Set(session.KeyQRCodeData, m.result.QRCode)
	if info := strings.TrimSpace(string(m.result.DriveInfo)); info != "" && info != "null" {
		a.session.Set(session.KeyGoogleDriveInfo, info)
	}
	return a.next()
}

func (a *App) renderCapture() string {
	if a.capturing {
		return accentStyle.Render("Look at the camera...")
	}
	return "Press enter to take your photo."
}
