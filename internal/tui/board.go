// Package tui is the interactive board: a new-todo form above one column per
// status. Lists come from a querycache.Cache and are refetched only when a
// mutation invalidates them.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoboard/internal/model"
	"github.com/idilsaglam/todoboard/internal/querycache"
	"github.com/idilsaglam/todoboard/internal/ui"
)

type focus int

const (
	focusTitle focus = iota
	focusBody
	focusColumns
)

type keyMap struct {
	Quit, ForceQuit  key.Binding
	Next, Prev       key.Binding
	Left, Right      key.Binding
	NewTodo, Submit  key.Binding
	Delete, Continue key.Binding
	Move             []key.Binding // same order as model.Statuses
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "column")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		NewTodo:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Continue:  key.NewBinding(key.WithKeys("enter")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Move: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "not started")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "in progress")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "done")),
		},
	}
}

type Options struct {
	User   string // shown in the header
	Logger *log.Logger
}

type Board struct {
	ctx     context.Context
	backend Backend
	cache   *querycache.Cache
	logger  *log.Logger
	user    string

	form    form
	columns []column
	active  int
	focus   focus

	pending map[string]bool // card ids with a mutation in flight
	spinner spinner.Model
	keys    keyMap
	width   int
	height  int
}

func New(ctx context.Context, backend Backend, cache *querycache.Cache, opt Options) Board {
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cols := make([]column, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		cols = append(cols, newColumn(s))
	}

	b := Board{
		ctx:     ctx,
		backend: backend,
		cache:   cache,
		logger:  logger,
		user:    opt.User,
		form:    newForm(),
		columns: cols,
		focus:   focusTitle,
		pending: make(map[string]bool),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:    defaultKeys(),
		width:   80,
		height:  24,
	}
	b.form.title.Focus()
	b.resize()
	return b
}

// Run starts the board in the alternate screen and blocks until it quits.
func Run(ctx context.Context, backend Backend, cache *querycache.Cache, opt Options) error {
	p := tea.NewProgram(New(ctx, backend, cache, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (b Board) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, b.spinner.Tick}
	for _, s := range model.Statuses {
		cmds = append(cmds, b.fetch(s))
	}
	return tea.Batch(cmds...)
}

// fetch starts a list fetch if the cache says one is due.
func (b Board) fetch(status model.Status) tea.Cmd {
	gen, ok := b.cache.Begin(status)
	if !ok {
		return nil
	}
	b.syncColumn(status)
	return fetchCmd(b.ctx, b.backend, status, gen)
}

// invalidate marks lists stale and fetches them again.
func (b Board) invalidate(statuses ...model.Status) tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range b.cache.Invalidate(statuses...) {
		cmds = append(cmds, b.fetch(s))
	}
	return tea.Batch(cmds...)
}

func (b Board) syncColumn(status model.Status) tea.Cmd {
	for i := range b.columns {
		if b.columns[i].status == status {
			return b.columns[i].sync(b.cache.Entry(status), b.pending)
		}
	}
	return nil
}

func (b Board) syncAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range model.Statuses {
		cmds = append(cmds, b.syncColumn(s))
	}
	return tea.Batch(cmds...)
}

func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.resize()
		return b, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd

	case listLoadedMsg:
		if msg.err != nil {
			b.logger.Error("list todos", "status", msg.status, "err", msg.err)
		}
		if !b.cache.Resolve(msg.status, msg.gen, msg.items, msg.err) {
			return b, nil
		}
		return b, b.syncColumn(msg.status)

	case createdMsg:
		b.form.submitting = false
		if msg.err != nil {
			b.logger.Error("create todo", "err", msg.err)
			return b, b.refocus()
		}
		b.logger.Debug("created todo", "id", msg.todo.ID)
		b.form.clear()
		return b, tea.Batch(b.refocus(), b.invalidate(model.NotStarted))

	case updatedMsg:
		delete(b.pending, msg.id)
		if msg.err != nil {
			b.logger.Error("update todo", "id", msg.id, "err", msg.err)
			return b, b.syncAll()
		}
		return b, tea.Batch(b.syncAll(), b.invalidate(msg.res.Type, msg.from))

	case deletedMsg:
		delete(b.pending, msg.id)
		if msg.err != nil {
			b.logger.Error("delete todo", "id", msg.id, "err", msg.err)
			return b, b.syncAll()
		}
		return b, tea.Batch(b.syncAll(), b.invalidate(msg.from))

	case tea.KeyMsg:
		if key.Matches(msg, b.keys.ForceQuit) {
			return b, tea.Quit
		}
		if b.focus == focusColumns {
			return b.updateColumns(msg)
		}
		return b.updateForm(msg)
	}

	// anything else (cursor blinks...) goes to the form
	return b, b.form.update(msg)
}

func (b Board) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Submit):
		return b.submit()
	case msg.Type == tea.KeyEsc:
		return b.setFocus(focusColumns)
	case key.Matches(msg, b.keys.Next):
		return b.setFocus((b.focus + 1) % 3)
	case key.Matches(msg, b.keys.Prev):
		return b.setFocus((b.focus + 2) % 3)
	case b.focus == focusTitle && key.Matches(msg, b.keys.Continue):
		if b.form.canSubmit() {
			return b.submit()
		}
		return b.setFocus(focusBody)
	}
	return b, b.form.update(msg)
}

func (b Board) updateColumns(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Next), key.Matches(msg, b.keys.NewTodo):
		return b.setFocus(focusTitle)
	case key.Matches(msg, b.keys.Prev):
		return b.setFocus(focusBody)
	case key.Matches(msg, b.keys.Left):
		b.active = (b.active + len(b.columns) - 1) % len(b.columns)
		return b, nil
	case key.Matches(msg, b.keys.Right):
		b.active = (b.active + 1) % len(b.columns)
		return b, nil
	case key.Matches(msg, b.keys.Delete):
		return b.remove()
	}
	for i, bind := range b.keys.Move {
		if key.Matches(msg, bind) {
			return b.move(model.Statuses[i])
		}
	}

	var cmd tea.Cmd
	col := &b.columns[b.active]
	col.list, cmd = col.list.Update(msg)
	return b, cmd
}

func (b Board) setFocus(f focus) (tea.Model, tea.Cmd) {
	b.focus = f
	return b, b.refocus()
}

// refocus points the form inputs at the current focus; a submitting form
// keeps both inputs blurred.
func (b *Board) refocus() tea.Cmd {
	if b.form.submitting {
		b.form.blur()
		return nil
	}
	switch b.focus {
	case focusTitle:
		return b.form.focusTitle()
	case focusBody:
		return b.form.focusBody()
	}
	b.form.blur()
	return nil
}

func (b Board) submit() (tea.Model, tea.Cmd) {
	if !b.form.canSubmit() {
		return b, nil
	}
	title, body := b.form.values()
	b.form.submitting = true
	b.form.blur()
	return b, tea.Batch(createCmd(b.ctx, b.backend, title, body), b.spinner.Tick)
}

// move changes the selected card's status. Moving to the status the card
// already has is a disabled action and does nothing.
func (b Board) move(to model.Status) (tea.Model, tea.Cmd) {
	c, ok := b.columns[b.active].selected()
	if !ok || c.busy || c.Type == to {
		return b, nil
	}
	b.pending[c.ID] = true
	return b, tea.Batch(b.syncColumn(c.Type), updateCmd(b.ctx, b.backend, c.Todo, to))
}

func (b Board) remove() (tea.Model, tea.Cmd) {
	c, ok := b.columns[b.active].selected()
	if !ok || c.busy {
		return b, nil
	}
	b.pending[c.ID] = true
	return b, tea.Batch(b.syncColumn(c.Type), deleteCmd(b.ctx, b.backend, c.Todo))
}

func (b *Board) resize() {
	b.form.setWidth(b.width - 2)
	w, h := b.columnWidth(), b.columnHeight()
	for i := range b.columns {
		b.columns[i].setSize(w, h)
	}
}

func (b Board) columnWidth() int {
	w := b.width / len(b.columns)
	if w < 20 {
		w = 20
	}
	return w
}

// columnHeight is what is left for the column contents once the header,
// form, help line and column borders are drawn.
func (b Board) columnHeight() int {
	h := b.height - lipgloss.Height(b.form.view(b.spinner.View())) - 4
	if h < 4 {
		h = 4
	}
	return h
}

func (b Board) View() string {
	t := ui.Current()

	header := t.Title.Render("Todo Board")
	if b.user != "" {
		header += t.Muted.Render("  user: " + b.user)
	}

	spin := b.spinner.View()
	colHeight := b.columnHeight()
	views := make([]string, 0, len(b.columns))
	for i, c := range b.columns {
		views = append(views, c.view(b.focus == focusColumns && i == b.active, spin, b.columnWidth(), colHeight))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		ui.Clip(header, b.width),
		b.form.view(spin),
		lipgloss.JoinHorizontal(lipgloss.Top, views...),
		t.Muted.Render(ui.Clip(b.helpLine(), b.width)),
	)
}

func (b Board) helpLine() string {
	if b.focus == focusColumns {
		return "↑/↓ select • ←/→ column • 1/2/3 move • x delete • n new • q quit"
	}
	return fmt.Sprintf("tab next field • %s save • esc board • ctrl+c quit", b.keys.Submit.Help().Key)
}
