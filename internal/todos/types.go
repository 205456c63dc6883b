package todos

import (
	"github.com/idilsaglam/todoboard/internal/api"
	"github.com/idilsaglam/todoboard/internal/model"
)

type GetTodosRequest struct {
	Type model.Status `json:"type"`
}

// Params renders the request as GET query parameters.
func (r GetTodosRequest) Params() []api.Param {
	return []api.Param{{Key: "type", Value: string(r.Type)}}
}

// GetTodosResponse is returned as-is; the list endpoint has no envelope.
type GetTodosResponse struct {
	Items []model.Todo `json:"items"`
}

type CreateTodoRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdateTodoRequest struct {
	ID   string       `json:"id"`
	Type model.Status `json:"type"`
}

type UpdateTodoResponse struct {
	ID   string       `json:"id"`
	Type model.Status `json:"type"`
}

type DeleteTodoRequest struct {
	ID string `json:"id"`
}

// envelope is how the mutation endpoints wrap their result.
type envelope[T any] struct {
	Attributes T `json:"attributes"`
}
