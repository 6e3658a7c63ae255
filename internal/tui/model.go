package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/daveio/ssdetect/internal/pipeline"
)

// recentLimit is how many of the latest results the live table shows.
// Rows appear in drain order, not submission order.
const recentLimit = 10

type Model struct {
	updates     <-chan pipeline.ProgressUpdate
	started     time.Time
	width       int
	submitted   int
	total       int
	screenshots int
	other       int
	errors      int
	recent      []pipeline.ResultRow
	quitting    bool
}

type doneMsg struct{}

type updateMsg pipeline.ProgressUpdate

// NewModel builds the live progress model. submitted is the number of
// tasks the pipeline will process.
func NewModel(updates <-chan pipeline.ProgressUpdate, submitted int) Model {
	return Model{updates: updates, submitted: submitted, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total += msg.TotalDelta
		m.screenshots += msg.ScreenshotDelta
		m.other += msg.OtherDelta
		m.errors += msg.ErrorDelta
		if msg.Row != nil {
			m.recent = append(m.recent, *msg.Row)
			if len(m.recent) > recentLimit {
				m.recent = m.recent[len(m.recent)-recentLimit:]
			}
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		// The terminal is in raw mode, so ctrl+c arrives here as a
		// keystroke rather than a signal.
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.submitted > 0 {
		ratio = float64(m.total) / float64(m.submitted)
		if ratio > 1 {
			ratio = 1
		}
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("ssdetect"),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", m.total, m.submitted)) +
			dimStyle.Render(fmt.Sprintf("  screenshots:%d other:%d errors:%d", m.screenshots, m.other, m.errors)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	}

	if len(m.recent) > 0 {
		lines = append(lines, "", dimStyle.Render(fmt.Sprintf("Last %d results", recentLimit)))
		lines = append(lines, renderRecent(m.recent))
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan pipeline.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

func renderRecent(rows []pipeline.ResultRow) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			classificationStyle(row.Classification).Render(padRight(row.Classification, 10)),
			actionStyle(row.Action).Render(padRight(row.Action, 7)),
			fileStyle.Render(filepath.Base(row.File)),
		))
	}
	return strings.Join(lines, "\n")
}

// actionStyle highlights skipped dispositions, which usually mean a
// duplicate was withheld from the destination.
func actionStyle(action string) lipgloss.Style {
	if action == "skipped" {
		return skippedStyle
	}
	return dimStyle
}

func classificationStyle(classification string) lipgloss.Style {
	switch classification {
	case "screenshot":
		return screenshotStyle
	case "error":
		return errStyle
	default:
		return dimStyle
	}
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle      = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle        = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle        = lipgloss.NewStyle().Foreground(ColorDim)
	fileStyle       = lipgloss.NewStyle().Foreground(ColorInk)
	screenshotStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	skippedStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
	errStyle        = lipgloss.NewStyle().Foreground(ColorError)
)
