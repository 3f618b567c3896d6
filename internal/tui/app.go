// Package tui is the kiosk screen: an employee types or picks their ID and
// starts one of the activity buttons, or ends whatever is running. Each action
// renders a one-shot result banner; there is no other shared state between
// actions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/worawit/breaklog/internal/ledger"
	"github.com/worawit/breaklog/internal/notify"
)

type bannerLevel int

const (
	bannerNone bannerLevel = iota
	bannerSuccess
	bannerWarning
	bannerError
)

type employeesMsg struct {
	employees []ledger.KnownEmployee
	err       error
}

type actionMsg struct {
	level   bannerLevel
	message string
}

type App struct {
	ledger *ledger.Ledger
	loc    *time.Location
	notify bool

	input     textinput.Model
	employees []ledger.KnownEmployee
	cursor    int

	banner      string
	bannerLevel bannerLevel
	quitting    bool
}

func NewApp(ld *ledger.Ledger, loc *time.Location, notifyEnabled bool) *App {
	ti := textinput.New()
	ti.Placeholder = "Scan, type or pick an employee ID..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	return &App{
		ledger: ld,
		loc:    loc,
		notify: notifyEnabled,
		input:  ti,
		cursor: -1,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadEmployees)
}

func (a *App) loadEmployees() tea.Msg {
	employees, err := a.ledger.ListEmployees(context.Background())
	return employeesMsg{employees: employees, err: err}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case employeesMsg:
		if msg.err == nil {
			a.employees = msg.employees
		}
		return a, nil

	case actionMsg:
		a.banner = msg.message
		a.bannerLevel = msg.level
		if msg.level == bannerSuccess {
			a.input.SetValue("")
			a.cursor = -1
			return a, a.loadEmployees
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			a.quitting = true
			return a, tea.Quit

		case "up":
			if len(a.employees) > 0 {
				if a.cursor <= 0 {
					a.cursor = len(a.employees) - 1
				} else {
					a.cursor--
				}
			}
			return a, nil

		case "down":
			if len(a.employees) > 0 {
				a.cursor = (a.cursor + 1) % len(a.employees)
			}
			return a, nil

		case "enter":
			if a.cursor >= 0 && a.cursor < len(a.employees) {
				a.input.SetValue(a.employees[a.cursor].EmployeeID)
				a.input.CursorEnd()
			}
			return a, nil

		case "ctrl+b":
			return a, a.startActivity(ledger.ActivityBreak)
		case "ctrl+s":
			return a, a.startActivity(ledger.ActivitySmoking)
		case "ctrl+t":
			return a, a.startActivity(ledger.ActivityToilet)
		case "ctrl+w":
			return a, a.startActivity(ledger.ActivityWork)
		case "ctrl+e":
			return a, a.endActivity()
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) employeeID() string {
	return strings.TrimSpace(a.input.Value())
}

func (a *App) startActivity(activity string) tea.Cmd {
	id := a.employeeID()
	if id == "" {
		return func() tea.Msg {
			return actionMsg{level: bannerWarning, message: "enter an employee ID before starting an activity"}
		}
	}

	return func() tea.Msg {
		date, clock := ledger.Stamp(time.Now().In(a.loc))
		entry, err := a.ledger.StartActivity(context.Background(), id, activity, date, clock)
		if err != nil {
			return actionMsg{level: bannerError, message: err.Error()}
		}

		message := fmt.Sprintf("started %s for %s at %s", entry.Activity, entry.EmployeeID, entry.StartTime)
		if a.notify {
			notify.Send("breaklog", message)
		}
		return actionMsg{level: bannerSuccess, message: message}
	}
}

func (a *App) endActivity() tea.Cmd {
	id := a.employeeID()
	if id == "" {
		return func() tea.Msg {
			return actionMsg{level: bannerWarning, message: "enter an employee ID before ending an activity"}
		}
	}

	return func() tea.Msg {
		date, clock := ledger.Stamp(time.Now().In(a.loc))
		ended, err := a.ledger.EndActivity(context.Background(), id, date, clock)
		if err != nil {
			return actionMsg{level: bannerError, message: err.Error()}
		}
		if !ended {
			return actionMsg{level: bannerWarning, message: fmt.Sprintf("no open activity for %s today", id)}
		}

		message := fmt.Sprintf("ended activity for %s at %s", id, clock)
		if a.notify {
			notify.Send("breaklog", message)
		}
		return actionMsg{level: bannerSuccess, message: message}
	}
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("breaklog · Time Clock"))
	sb.WriteString("\n")

	switch a.bannerLevel {
	case bannerSuccess:
		sb.WriteString(successStyle.Render(a.banner) + "\n\n")
	case bannerWarning:
		sb.WriteString(warningStyle.Render(a.banner) + "\n\n")
	case bannerError:
		sb.WriteString(errorStyle.Render(a.banner) + "\n\n")
	}

	sb.WriteString(a.input.View())
	sb.WriteString("\n\n")

	if len(a.employees) > 0 {
		sb.WriteString(dimStyle.Render("Known IDs:"))
		sb.WriteString("\n")
		for i, e := range a.employees {
			prefix := "  "
			if i == a.cursor {
				prefix = "> "
			}
			line := fmt.Sprintf("%s%-16s %s", prefix, e.EmployeeID, dimStyle.Render(e.DisplayName()))
			if i == a.cursor {
				line = highlightStyle.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString(helpStyle.Render("Ctrl+B: break • Ctrl+S: smoking • Ctrl+T: toilet • Ctrl+W: work • Ctrl+E: end • ↑/↓ + Enter: pick ID • Esc: quit"))

	return boxStyle.Render(sb.String())
}
