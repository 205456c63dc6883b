package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoboard/internal/model"
	"github.com/idilsaglam/todoboard/internal/todos"
)

// Backend is what the board needs from the typed todo layer.
// *todos.Service satisfies it.
type Backend interface {
	GetTodos(ctx context.Context, req todos.GetTodosRequest) (todos.GetTodosResponse, error)
	CreateTodo(ctx context.Context, req todos.CreateTodoRequest) (model.Todo, error)
	UpdateTodo(ctx context.Context, req todos.UpdateTodoRequest) (todos.UpdateTodoResponse, error)
	DeleteTodo(ctx context.Context, req todos.DeleteTodoRequest) (model.Todo, error)
}

type listLoadedMsg struct {
	status model.Status
	gen    uint64
	items  []model.Todo
	err    error
}

type createdMsg struct {
	todo model.Todo
	err  error
}

type updatedMsg struct {
	id   string
	from model.Status
	res  todos.UpdateTodoResponse
	err  error
}

type deletedMsg struct {
	id   string
	from model.Status
	err  error
}

func fetchCmd(ctx context.Context, b Backend, status model.Status, gen uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := b.GetTodos(ctx, todos.GetTodosRequest{Type: status})
		return listLoadedMsg{status: status, gen: gen, items: res.Items, err: err}
	}
}

func createCmd(ctx context.Context, b Backend, title, body string) tea.Cmd {
	return func() tea.Msg {
		t, err := b.CreateTodo(ctx, todos.CreateTodoRequest{Title: title, Body: body})
		return createdMsg{todo: t, err: err}
	}
}

func updateCmd(ctx context.Context, b Backend, t model.Todo, to model.Status) tea.Cmd {
	return func() tea.Msg {
		res, err := b.UpdateTodo(ctx, todos.UpdateTodoRequest{ID: t.ID, Type: to})
		return updatedMsg{id: t.ID, from: t.Type, res: res, err: err}
	}
}

func deleteCmd(ctx context.Context, b Backend, t model.Todo) tea.Cmd {
	return func() tea.Msg {
		_, err := b.DeleteTodo(ctx, todos.DeleteTodoRequest{ID: t.ID})
		return deletedMsg{id: t.ID, from: t.Type, err: err}
	}
}
