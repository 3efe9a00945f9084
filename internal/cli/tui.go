package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reelforge/reelforge/pkg/timeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodeListModel - Interactive node browser
// =============================================================================

// NodeListModel is the bubbletea model for browsing placed and owned nodes.
type NodeListModel struct {
	Timeline *timeline.Timeline
	Nodes    []timeline.NodeSummary
	Cursor   int
	Height   int
	Offset   int
}

// NewNodeListModel creates a node browser over the timeline's summary.
func NewNodeListModel(tl *timeline.Timeline) NodeListModel {
	sum := tl.Summarize()
	return NodeListModel{
		Timeline: tl,
		Nodes:    sum.Nodes,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timeline Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		where := listDimStyle.Render("owned")
		if n.Track != "" {
			where = listDimStyle.Render(fmt.Sprintf("%s %d–%d", n.Track, n.StartFrame, n.StartFrame+n.DurationFrames))
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, style.Render(fmt.Sprintf("#%-3d %s", n.ID, n.Tag)), where))
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())

	return b.String()
}

// detailView renders the props of the node under the cursor.
func (m NodeListModel) detailView() string {
	if m.Cursor >= len(m.Nodes) {
		return ""
	}
	n := m.Timeline.Node(m.Nodes[m.Cursor].ID)
	if n == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("<%s>", n.Tag())))
	b.WriteString("\n")
	for _, p := range n.Props() {
		var val string
		switch p.Value.Kind() {
		case timeline.KindChild:
			val = fmt.Sprintf("child #%d", p.Value.ChildID())
		case timeline.KindChildList:
			val = fmt.Sprintf("%d children", len(p.Value.ChildIDs()))
		default:
			val = fmt.Sprintf("%v", p.Value.Scalar())
		}
		b.WriteString(listDimStyle.Render("  "+p.Key+": ") + listNormalStyle.Render(val) + "\n")
	}
	return b.String()
}
