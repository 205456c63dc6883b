package devserver_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/todoboard/internal/devserver"
)

func serve(t *testing.T, method, target, user, body string) *httptest.ResponseRecorder {
	t.Helper()

	srv := devserver.New(devserver.NewStore(), nil)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("user", user)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func Test_Server_Rejects_When_UserHeaderMissing(t *testing.T) {
	t.Parallel()

	rec := serve(t, http.MethodGet, "/api/getTodos?type=done&", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func Test_Server_GetTodos_ReturnsEmptyItems(t *testing.T) {
	t.Parallel()

	rec := serve(t, http.MethodGet, "/api/getTodos?type=done&", "test", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func Test_Server_GetTodos_Rejects_When_TypeMissing(t *testing.T) {
	t.Parallel()

	rec := serve(t, http.MethodGet, "/api/getTodos?", "test", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_Server_CreateTodo_Rejects_When_TitleEmpty(t *testing.T) {
	t.Parallel()

	rec := serve(t, http.MethodPost, "/api/createTodo", "test", `{"title":"  ","body":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_Server_UpdateTodo_ReturnsNotFound_When_IDUnknown(t *testing.T) {
	t.Parallel()

	rec := serve(t, http.MethodPut, "/api/updateTodo", "test", `{"id":"nope","type":"done"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Store_ScopesItemsByUser(t *testing.T) {
	t.Parallel()

	st := devserver.NewStore()
	a := st.Create("alice", "a", "")
	st.Create("bob", "b", "")

	got := st.List("alice", "not_started")
	assert.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	_, err := st.Delete("bob", a.ID)
	assert.ErrorIs(t, err, devserver.ErrNotFound)
}
