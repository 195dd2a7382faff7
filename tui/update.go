package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/stickygrid/layout"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		m.scrollTo(m.offset, layout.Velocity{})
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.scrollBy(0, -1)
		case key.Matches(msg, m.keys.Down):
			m.scrollBy(0, 1)
		case key.Matches(msg, m.keys.Left):
			m.scrollBy(-2, 0)
		case key.Matches(msg, m.keys.Right):
			m.scrollBy(2, 0)
		case key.Matches(msg, m.keys.PageUp):
			m.scrollTo(layout.ScrollOffset{X: m.offset.X, Y: m.offset.Y - m.pageHeight()}, layout.Velocity{Y: -m.pageHeight()})
		case key.Matches(msg, m.keys.PageDown):
			m.scrollTo(layout.ScrollOffset{X: m.offset.X, Y: m.offset.Y + m.pageHeight()}, layout.Velocity{Y: m.pageHeight()})
		case key.Matches(msg, m.keys.Home):
			m.scrollTo(layout.ScrollOffset{}, layout.Velocity{})
		case key.Matches(msg, m.keys.Snap):
			m.snap = !m.snap
			m.scrollTo(m.offset, layout.Velocity{})
			m.status = fmt.Sprintf("snap: %v", m.snap)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.relayout()
			m.scrollTo(m.offset, layout.Velocity{})
			return m, nil
		default:
			return m, nil
		}
		m.status = m.position()
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollBy(0, -wheelStep)
		case tea.MouseButtonWheelDown:
			m.scrollBy(0, wheelStep)
		case tea.MouseButtonWheelLeft:
			m.scrollBy(-wheelStep, 0)
		case tea.MouseButtonWheelRight:
			m.scrollBy(wheelStep, 0)
		default:
			return m, nil
		}
		m.status = m.position()
	}
	return m, nil
}

// pageHeight is the scrollable part of the viewport below the pinned row.
func (m Model) pageHeight() float64 {
	_, h := m.gridSize()
	return max(float64(h)-m.pinnedSize().Height, 1)
}

func (m Model) position() string {
	extent := m.engine.ContentExtent()
	return fmt.Sprintf("offset %.0f,%.0f of %.0fx%.0f", m.offset.X, m.offset.Y, extent.Width, extent.Height)
}
