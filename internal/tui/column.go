package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todoboard/internal/model"
	"github.com/idilsaglam/todoboard/internal/querycache"
	"github.com/idilsaglam/todoboard/internal/ui"
)

// card adapts a Todo to bubbles/list.Item
type card struct {
	model.Todo
	busy bool // a move or delete for this card is in flight
}

func (c card) FilterValue() string { return c.Title }

// short labels for the move actions; columns are narrow.
var moveLabel = map[model.Status]string{
	model.NotStarted: "todo",
	model.InProgress: "doing",
	model.Done:       "done",
}

// Custom delegate: title, body, then the actions row.
type cardDelegate struct {
	active bool   // column has focus
	spin   string // current spinner frame
	width  int
}

func (d cardDelegate) Height() int                               { return 3 }
func (d cardDelegate) Spacing() int                              { return 1 }
func (d cardDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(card)
	if !ok {
		return
	}
	t := ui.Current()
	room := d.width - 2 // after the two-cell prefix
	if room < 8 {
		room = 8
	}

	prefix := "  "
	if d.active && index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	titleRoom := room
	if c.busy {
		titleRoom -= 3 // space and spinner frame
	}
	title := t.Title.Render(ui.Truncate(c.Title, titleRoom))
	if c.busy {
		title += " " + d.spin
	}

	body := t.Muted.Render(ui.Truncate(firstLine(c.Body), room))

	actions := actionRow(c, true)
	if lipgloss.Width(actions) > room {
		actions = actionRow(c, false)
	}

	// every line must stay within the column or the list miscounts rows
	lines := []string{prefix + title, "  " + body, "  " + actions}
	for i := range lines {
		lines[i] = ui.Clip(lines[i], d.width)
	}
	fmt.Fprint(w, strings.Join(lines, "\n"))
}

// actionRow renders the move and delete actions; long adds the status
// names after the key numbers.
func actionRow(c card, long bool) string {
	t := ui.Current()
	var actions []string
	for i, s := range model.Statuses {
		label := fmt.Sprintf("%d", i+1)
		if long {
			label += ":" + moveLabel[s]
		}
		if s == c.Type || c.busy {
			label = t.Disabled.Render(label)
		}
		actions = append(actions, label)
	}
	del := t.Error.Render("x")
	if c.busy {
		del = t.Disabled.Render("x")
	}
	return strings.Join(append(actions, del), " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

type column struct {
	status model.Status
	list   list.Model
	entry  querycache.Entry
}

func newColumn(status model.Status) column {
	l := list.New(nil, cardDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = ui.Current().Muted

	return column{
		status: status,
		list:   l,
		entry:  querycache.Entry{Status: status},
	}
}

// sync replaces the column's cards with the cache snapshot.
func (c *column) sync(e querycache.Entry, pending map[string]bool) tea.Cmd {
	c.entry = e
	items := make([]list.Item, 0, len(e.Items))
	for _, t := range e.Items {
		items = append(items, card{Todo: t, busy: pending[t.ID]})
	}
	cmd := c.list.SetItems(items)
	if n := len(items); n > 0 && c.list.Index() >= n {
		c.list.Select(n - 1)
	}
	return cmd
}

// setSize fits the list under the heading of a width x height box.
func (c *column) setSize(width, height int) {
	c.list.SetDelegate(cardDelegate{width: width - 4})
	c.list.SetSize(width-4, height-1)
}

func (c column) selected() (card, bool) {
	it, ok := c.list.SelectedItem().(card)
	return it, ok
}

// view draws the column as a bordered box exactly width cells wide and
// height+2 rows tall.
func (c column) view(active bool, spin string, width, height int) string {
	t := ui.Current()
	inner := width - 4 // border and padding

	heading := ui.StatusStyle(c.status).Bold(true).Render(c.status.Label())
	if c.entry.State == querycache.Ready {
		heading += t.Muted.Render(fmt.Sprintf(" (%d)", len(c.entry.Items)))
	}
	if c.entry.Fetching {
		heading += " " + spin
	}

	var content string
	switch c.entry.State {
	case querycache.Idle, querycache.Loading:
		content = t.Muted.Render("loading")
	case querycache.Failed:
		content = t.Error.Render("error")
	default:
		if len(c.entry.Items) == 0 {
			content = t.Muted.Render("no items")
		} else {
			c.list.SetDelegate(cardDelegate{active: active, spin: spin, width: inner})
			content = c.list.View()
		}
	}

	border := t.BorderColor
	if active {
		border = lipgloss.Color("12")
	}
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Height(height).
		Render(fitLines(heading+"\n"+content, inner, height))
}

// fitLines clips s to at most h lines of at most w cells.
func fitLines(s string, w, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for i := range lines {
		lines[i] = ui.Clip(lines[i], w)
	}
	return strings.Join(lines, "\n")
}
