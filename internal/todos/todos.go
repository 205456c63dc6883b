// Package todos gives the backend's four todo routes static request and
// response types on top of the generic api transport.
package todos

import (
	"context"

	"github.com/idilsaglam/todoboard/internal/api"
	"github.com/idilsaglam/todoboard/internal/model"
)

const (
	pathGetTodos   = "getTodos"
	pathCreateTodo = "createTodo"
	pathUpdateTodo = "updateTodo"
	pathDeleteTodo = "deleteTodo"
)

// Service calls the todo routes for the client's configured user.
// Errors from the transport are returned unchanged.
type Service struct {
	c *api.Client
}

func New(c *api.Client) *Service {
	return &Service{c: c}
}

// GetTodos lists the current user's todos with the requested status.
func (s *Service) GetTodos(ctx context.Context, req GetTodosRequest) (GetTodosResponse, error) {
	return api.Get[GetTodosResponse](ctx, s.c, pathGetTodos, req.Params()...)
}

// CreateTodo adds a todo and returns it as stored by the server.
func (s *Service) CreateTodo(ctx context.Context, req CreateTodoRequest) (model.Todo, error) {
	res, err := api.Post[envelope[model.Todo]](ctx, s.c, pathCreateTodo, &req)
	return res.Attributes, err
}

// UpdateTodo moves a todo to another status. Moving it to the status it
// already has is not rejected here.
func (s *Service) UpdateTodo(ctx context.Context, req UpdateTodoRequest) (UpdateTodoResponse, error) {
	res, err := api.Put[envelope[UpdateTodoResponse]](ctx, s.c, pathUpdateTodo, &req)
	return res.Attributes, err
}

// DeleteTodo removes a todo and returns what was deleted.
func (s *Service) DeleteTodo(ctx context.Context, req DeleteTodoRequest) (model.Todo, error) {
	res, err := api.Delete[envelope[model.Todo]](ctx, s.c, pathDeleteTodo, &req)
	return res.Attributes, err
}
