// Package monitor is the interactive variant of watch mode: the same
// frame the plain watcher prints, redrawn by BubbleTea in the alternate
// screen with scrolling and pause.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/thermals/internal/display"
	"github.com/luki/thermals/internal/sensor"
)

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type frameMsg struct {
	frame string
	err   error
	time  time.Time
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the interactive watch.
type Model struct {
	poll     func() tea.Msg
	interval time.Duration

	frame    string
	err      error
	width    int
	height   int
	scroll   int
	lastPoll time.Time
	paused   bool
}

// New returns a model that renders src with printer every interval.
func New(ctx context.Context, printer *display.Printer, src sensor.Source, interval time.Duration) Model {
	return Model{
		interval: interval,
		poll: func() tea.Msg {
			frame, err := printer.Frame(ctx, src)
			return frameMsg{frame: string(frame), err: err, time: time.Now()}
		},
	}
}

// Run drives the model until the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.poll
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			if m.scroll < m.maxScroll() {
				m.scroll++
			}
		case "home":
			m.scroll = 0
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll = min(m.scroll, m.maxScroll())

	case tickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, m.poll

	case frameMsg:
		m.lastPoll = msg.time
		m.err = msg.err
		// keep the previous frame when enumeration itself failed
		if msg.err == nil || errors.Is(msg.err, sensor.ErrNameUnavailable) {
			m.frame = msg.frame
		}
		m.scroll = min(m.scroll, m.maxScroll())
		return m, m.tickCmd()
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorLabel    = lipgloss.Color("252")
	colorErr      = lipgloss.Color("196")
)

// legend lists the classifier buckets hottest first.
var legend = []struct {
	color display.Color
	text  string
}{
	{display.BrightRed, ">85"},
	{display.BrightYellow, ">65"},
	{display.BrightGreen, ">40"},
	{display.BrightBlue, ">20"},
	{display.BrightMagenta, ">0"},
	{display.Neutral, "≤0"},
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width
	if contentWidth < 40 {
		contentWidth = 40
	}

	body := m.body()
	scroll := min(m.scroll, m.maxScroll())
	end := min(scroll+m.visible(), len(body))

	sections := []string{m.renderTitleBar(contentWidth)}
	sections = append(sections, body[scroll:end]...)
	sections = append(sections, m.renderFooter(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) body() []string {
	var body []string
	if m.err != nil {
		body = append(body, lipgloss.NewStyle().
			Foreground(colorErr).
			Bold(true).
			Render(fmt.Sprintf(" ERROR: %v", m.err)))
	}
	if m.frame == "" {
		return append(body, lipgloss.NewStyle().
			Foreground(colorDim).
			Render(" Waiting for sensor data..."))
	}
	return append(body, strings.Split(strings.TrimSuffix(m.frame, "\n"), "\n")...)
}

// visible is the number of body lines between the title and footer bars.
func (m Model) visible() int {
	return max(m.height-2, 3)
}

func (m Model) maxScroll() int {
	return max(len(m.body())-m.visible(), 0)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("THERMALS")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	statusParts := []string{dimS.Render(fmt.Sprintf("every %s", m.interval))}
	if !m.lastPoll.IsZero() {
		statusParts = append(statusParts, dimS.Render(m.lastPoll.Format("15:04:05")))
	}
	if m.paused {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorErr).
			Bold(true).
			Render("PAUSED"))
	}

	right := strings.Join(statusParts, dimS.Render(" │ "))
	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	var scale string
	for _, l := range legend {
		scale += lipgloss.NewStyle().Foreground(l.color.ANSI()).Render("██") +
			dimS.Render(" "+l.text+" ")
	}

	keys := dimS.Render("q") + labelS.Render(":quit") +
		dimS.Render("  j/k") + labelS.Render(":scroll") +
		dimS.Render("  p") + labelS.Render(":pause")

	gap := width - lipgloss.Width(scale) - lipgloss.Width(keys) - 2
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(scale + strings.Repeat(" ", gap) + keys)
}
