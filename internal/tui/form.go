package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoboard/internal/ui"
)

// form is the new-todo form: a one-line title and a free-text body.
type form struct {
	title      textinput.Model
	body       textarea.Model
	submitting bool // create request in flight; inputs are frozen
}

func newForm() form {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter the title of your new todo"
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Enter a description about your todo"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 2000

	return form{title: ti, body: ta}
}

// values are sent as typed.
func (f form) values() (title, body string) {
	return f.title.Value(), f.body.Value()
}

// canSubmit rejects blank fields, including whitespace-only ones.
func (f form) canSubmit() bool {
	title, body := f.values()
	return !f.submitting && strings.TrimSpace(title) != "" && strings.TrimSpace(body) != ""
}

func (f *form) focusTitle() tea.Cmd {
	f.body.Blur()
	return f.title.Focus()
}

func (f *form) focusBody() tea.Cmd {
	f.title.Blur()
	return f.body.Focus()
}

func (f *form) blur() {
	f.title.Blur()
	f.body.Blur()
}

func (f *form) clear() {
	f.title.SetValue("")
	f.body.Reset()
}

func (f *form) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.title.Width = w - 6
	f.body.SetWidth(w - 4)
}

// update forwards input to whichever field has focus. Nothing is editable
// while a create is in flight.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if f.submitting {
		return nil
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if f.title.Focused() {
		f.title, cmd = f.title.Update(msg)
		cmds = append(cmds, cmd)
	}
	if f.body.Focused() {
		f.body, cmd = f.body.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (f form) view(spin string) string {
	t := ui.Current()

	button := t.Muted.Render("[+] ctrl+s")
	if f.canSubmit() {
		button = t.Success.Render("[+] ctrl+s")
	}
	if f.submitting {
		button = spin + " " + t.Muted.Render("saving")
	}
	return ui.PanelString(t.Title.Render("New todo") + "  " + button + "\n" + f.title.View() + "\n" + f.body.View())
}
