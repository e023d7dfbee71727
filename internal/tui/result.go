package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/service"
)

func (a *App) resultKeys(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := m.String()
	switch a.modal {
	case modalPrint:
		switch key {
		case "y", "enter":
			return a, a.printCmd()
		case "s", "tab":
			return a, a.cycleSize()
		case "p", "n", "esc":
			if !a.printing {
				a.modal = modalNone
			}
		}
		return a, nil
	case modalQR:
		switch key {
		case "q", "esc", "enter":
			a.modal = modalNone
		case "p":
			a.modal = modalPrint
		}
		return a, nil
	}
	switch key {
	case "q":
		a.modal = modalQR
	case "p":
		a.modal = modalPrint
	case "n":
		return a, a.reset()
	}
	return a, nil
}

func (a *App) cycleSize() tea.Cmd {
	if a.printing {
		return nil
	}
	sizes := a.opts.PrintSizes
	i := 0
	for j, s := range sizes {
		if s == a.printSize {
			i = j + 1
		}
	}
	a.printSize = sizes[i%len(sizes)]
	save := a.opts.SavePrint
	if save == nil {
		return nil
	}
	printer, size := a.opts.Printer, a.printSize
	return func() tea.Msg {
		if err := save(printer, size); err != nil {
			return errMsg{fmt.Errorf("save print preference: %w", err)}
		}
		return nil
	}
}

func (a *App) printCmd() tea.Cmd {
	if a.printing {
		return nil
	}
	svc := a.services.Prints
	if svc == nil {
		a.alert = "Printing is not available."
		return nil
	}
	a.printing = true
	sessionID, ref := a.session.ID(), a.session.SwappedPhoto()
	printer, size := a.opts.Printer, a.printSize
	return func() tea.Msg {
		resp, err := svc.Print(a.ctx, sessionID, ref, printer, size)
		return printDoneMsg{sessionID: sessionID, resp: resp, err: err}
	}
}

func (a *App) finishPrint(m printDoneMsg) tea.Cmd {
	if m.sessionID != a.session.ID() {
		return nil
	}
	a.printing = false
	switch {
	case errors.Is(m.err, service.ErrNoImage):
		a.alert = "No image found to print!"
		return nil
	case errors.Is(m.err, service.ErrNoPrintMessage):
		a.alert = "Failed to print image."
		return nil
	case m.err != nil:
		a.alert = "An error occurred while printing."
		return nil
	}
	a.modal = modalNone
	a.toast = true
	a.toastSeq++
	return after(a.opts.Toast, toastExpiredMsg{seq: a.toastSeq})
}

func (a *App) renderResult() string {
	var b strings.Builder
	ref := a.session.SwappedPhoto()
	if ref == "" {
		b.WriteString(mutedStyle.Render("No photo yet."))
	} else {
		b.WriteString("Your photo is ready\n")
		b.WriteString(mutedStyle.Render(describeImage(ref)))
	}
	b.WriteString("\n\n" + helpStyle.Render("[q] QR code  [p] Print  [n] New session"))
	switch a.modal {
	case modalQR:
		b.WriteString("\n\n" + modalStyle.Render(a.renderQR()))
	case modalPrint:
		b.WriteString("\n\n" + modalStyle.Render(a.renderPrintConfirm()))
	}
	if a.toast {
		b.WriteString("\n\n" + toastStyle.Render("Printed!"))
	}
	return b.String()
}

func (a *App) renderQR() string {
	if a.session.QRCode() == "" {
		return titleStyle.Render("QR Code Not Available") +
			"\nGoogle Drive integration is not configured or the upload failed." +
			"\n" + helpStyle.Render("[q] Close")
	}
	out := titleStyle.Render("Access Your Photo Gallery") + "\nScan the QR code to download your photo."
	info, err := a.session.DriveInfo()
	if err != nil {
		a.log.Warn("ignoring gallery info", zap.Error(err))
	} else if info != nil && info.GalleryURL != "" {
		out += "\n" + accentStyle.Render(info.GalleryURL)
	}
	return out + "\n" + helpStyle.Render("[q] Close")
}

func (a *App) renderPrintConfirm() string {
	if a.printing {
		return titleStyle.Render("Printing...")
	}
	return titleStyle.Render("Print your photo?") +
		fmt.Sprintf("\nSize: %s", selectedStyle.Render(a.printSize)) +
		"\n" + helpStyle.Render("[y] Print  [s] Size  [n] Cancel")
}

// describeImage summarizes an image reference without dumping inline data.
func describeImage(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		mime := strings.TrimPrefix(ref, "data:")
		if i := strings.IndexAny(mime, ";,"); i >= 0 {
			mime = mime[:i]
		}
		return fmt.Sprintf("%s, %d KB", mime, len(ref)*3/4/1024)
	}
	return ref
}
