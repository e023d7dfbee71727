package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/photobooth/internal/wizard"
)

// styles
var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	accentStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	buttonStyle       = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	disabledStyle     = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("240")).Background(lipgloss.Color("236"))
	modalStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	toastStyle        = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("120"))
	alertStyle        = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("203")).Padding(1, 2)
	fadingStyle       = lipgloss.NewStyle().Faint(true)
)

// stepAccents gives each step its own frame color.
var stepAccents = [wizard.StepCount]lipgloss.Color{
	wizard.StepContact:  "63",
	wizard.StepGender:   "135",
	wizard.StepTemplate: "170",
	wizard.StepCapture:  "208",
	wizard.StepResult:   "42",
}

func button(label string, enabled bool) string {
	if enabled {
		return buttonStyle.Render(label)
	}
	return disabledStyle.Render(label)
}

func (a *App) View() string {
	var body string
	if st := a.wizard.State(); !st.Started {
		body = a.renderLanding()
	} else {
		body = a.renderStep(st)
	}
	if a.alert != "" {
		body += "\n\n" + alertStyle.Render(a.alert+"\n"+helpStyle.Render("press any key"))
	}
	if a.width > 0 && a.height > 0 {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
	}
	return body
}

func (a *App) renderLanding() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Render("PHOTO BOOTH")
	return fmt.Sprintf("%s\n\n%s", title, button("Tap to Start", true)) +
		"\n" + helpStyle.Render("press enter")
}

func (a *App) renderStep(st wizard.State) string {
	v := a.views[st.Step]
	content := v.render()
	if st.Transitioning {
		content = fadingStyle.Render(content)
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.title))
	b.WriteString("  " + mutedStyle.Render(progress(st.Step)))
	b.WriteString("\n\n" + content)
	if a.status != "" {
		b.WriteString("\n\n" + a.status)
	}
	if help := a.stepHelp(st.Step); help != "" {
		b.WriteString("\n\n" + helpStyle.Render(help))
	}
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(stepAccents[st.Step]).
		Padding(1, 3)
	return frame.Render(b.String())
}

// progress renders one dot per step.
func progress(step wizard.Step) string {
	dots := make([]string, wizard.StepCount)
	for i := range dots {
		if wizard.Step(i) == step {
			dots[i] = "●"
		} else {
			dots[i] = "○"
		}
	}
	return strings.Join(dots, " ")
}

func (a *App) stepHelp(step wizard.Step) string {
	var help string
	switch step {
	case wizard.StepContact:
		help = "[tab] Switch field  [enter] Next"
	case wizard.StepGender:
		help = "[←/→] Choose  [enter] Next"
	case wizard.StepTemplate:
		help = "[←/→] Browse  [enter] Save & Next"
	case wizard.StepCapture:
		if a.capturing {
			return ""
		}
		help = "[enter] Take photo"
	default:
		return ""
	}
	if a.wizard.CanGoBack() {
		help += "  [esc] Back"
	}
	return help
}
