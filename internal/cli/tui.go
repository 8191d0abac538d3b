package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/subway/pkg/line"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - Interactive line or station selection
// =============================================================================

// PickerItem is one selectable row.
type PickerItem struct {
	ID     string
	Label  string
	Detail string
	// Disabled rows are shown dimmed and cannot be selected.
	Disabled bool
}

// PickerModel is the bubbletea model for picking one item from a list.
type PickerModel struct {
	Title    string
	Items    []PickerItem
	Cursor   int
	Selected *PickerItem
	Height   int
	Offset   int
}

// NewPickerModel creates a picker over items.
func NewPickerModel(title string, items []PickerItem) PickerModel {
	return PickerModel{Title: title, Items: items, Height: 15}
}

// NewStationPicker lists the stations of l in path order. Termini are marked
// in the detail column. A single-section line has no removable station, so
// every row is disabled.
func NewStationPicker(l *line.Line) PickerModel {
	stations := l.Stations()
	removable := len(l.Sections()) > 1
	items := make([]PickerItem, len(stations))
	for i, s := range stations {
		detail := ""
		switch i {
		case 0:
			detail = "up terminus"
		case len(stations) - 1:
			detail = "down terminus"
		}
		items[i] = PickerItem{ID: s.ID, Label: s.DisplayName(), Detail: detail, Disabled: !removable}
	}
	return NewPickerModel(fmt.Sprintf("Remove station from %s", lineTitle(l)), items)
}

// NewLinePicker lists lines by ID.
func NewLinePicker(lines []*line.Line) PickerModel {
	items := make([]PickerItem, len(lines))
	for i, l := range lines {
		items[i] = PickerItem{
			ID:     string(l.ID),
			Label:  lineTitle(l),
			Detail: fmt.Sprintf("%d stations", len(l.Stations())),
		}
	}
	return NewPickerModel("Select Line", items)
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Items) == 0 || m.Items[m.Cursor].Disabled {
				return m, nil
			}
			item := m.Items[m.Cursor]
			m.Selected = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	for i := m.Offset; i < end; i++ {
		item := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		row := fmt.Sprintf("%s%-24s %s", cursor, item.Label, listDimStyle.Render(item.Detail))

		switch {
		case item.Disabled:
			b.WriteString(listDimStyle.Render(row))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(row))
		default:
			b.WriteString(listNormalStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))

	return b.String()
}

// runPicker runs m and returns the selected item, or nil if the user quit.
func runPicker(m PickerModel) (*PickerItem, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(PickerModel)
	if !ok {
		return nil, nil
	}
	return fm.Selected, nil
}

// =============================================================================
// Tables
// =============================================================================

// linesTable renders a summary table of lines.
func linesTable(lines []*line.Line) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(lines))
	for i, l := range lines {
		stations := l.Stations()
		route := "-"
		if len(stations) > 0 {
			route = stations[0].DisplayName() + " " + iconArrow + " " + stations[len(stations)-1].DisplayName()
		}
		rows[i] = []string{
			string(l.ID),
			l.Name,
			l.Color,
			strconv.Itoa(len(stations)),
			strconv.Itoa(l.Path().TotalDistance()),
			route,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Color", "Stations", "Distance", "Route").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 || col == 4 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func lineTitle(l *line.Line) string {
	if l.Name != "" {
		return l.Name
	}
	return string(l.ID)
}
