// Package ui provides the Bubble Tea TUI for watch mode.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxFeedEntries = 8

// Model is the main Bubble Tea model for the watch dashboard.
type Model struct {
	spinner spinner.Model
	rates   table.Model

	asset       string
	thresholdBp int64

	currentBlock uint64
	cycleCount   uint64
	lastCycle    *CycleMsg
	feed         []string
	errorMsg     string
	quitting     bool
	width        int
}

// NewModel creates the dashboard model.
func NewModel(asset string, thresholdBp int64) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	columns := []table.Column{
		{Title: "Venue", Width: 14},
		{Title: "Rate (bps)", Width: 12},
		{Title: "Position", Width: 22},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(4),
		table.WithFocused(false),
	)

	return Model{
		spinner:     sp,
		rates:       t,
		asset:       asset,
		thresholdBp: thresholdBp,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case BlockMsg:
		m.currentBlock = msg.Number

	case CycleMsg:
		m.cycleCount++
		m.lastCycle = &msg
		m.errorMsg = ""
		m.rates.SetRows([]table.Row{
			{"Aave V3", fmt.Sprintf("%d", msg.AaveBps), msg.AavePosition},
			{"Compound V3", fmt.Sprintf("%d", msg.CompoundBps), msg.CompoundPosition},
			{"Wallet", "-", msg.WalletBalance},
		})
		if msg.ShouldMove {
			m.pushFeed(MoveStyle.Render(fmt.Sprintf("[%s] MOVE %s %s -> %s (diff %dbp)",
				msg.Timestamp.Format("15:04:05"), msg.Amount, msg.From, msg.To, msg.DifferenceBp)))
		} else {
			m.pushFeed(HoldStyle.Render(fmt.Sprintf("[%s] hold (diff %dbp < %dbp)",
				msg.Timestamp.Format("15:04:05"), msg.DifferenceBp, m.thresholdBp)))
		}

	case SubmissionMsg:
		if msg.Success {
			m.pushFeed(SubmittedStyle.Render(fmt.Sprintf("[%s] submitted %s %s -> %s",
				time.Now().Format("15:04:05"), msg.Amount, msg.From, msg.To)))
		} else {
			m.pushFeed(ErrorStyle.Render(fmt.Sprintf("[%s] submission failed: %s",
				time.Now().Format("15:04:05"), msg.Error)))
		}

	case ErrorMsg:
		m.errorMsg = msg.Error.Error()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) pushFeed(line string) {
	m.feed = append(m.feed, line)
	if len(m.feed) > maxFeedEntries {
		m.feed = m.feed[len(m.feed)-maxFeedEntries:]
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "Yield rebalancer stopped.\n"
	}

	var b strings.Builder

	title := TitleStyle.Render(fmt.Sprintf(" Yield Rebalancer — %s ", m.asset))
	status := fmt.Sprintf("%s block #%d   cycles: %d   threshold: %dbp",
		m.spinner.View(), m.currentBlock, m.cycleCount, m.thresholdBp)

	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(MutedValue.Render(status))
	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Render(m.rates.View()))
	b.WriteString("\n\n")

	if len(m.feed) > 0 {
		b.WriteString(BoxStyle.Render(strings.Join(m.feed, "\n")))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString(ErrorStyle.Render("error: " + m.errorMsg))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("q: quit"))
	b.WriteString("\n")

	return b.String()
}
