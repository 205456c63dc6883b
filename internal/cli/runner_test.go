package cli_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoboard/internal/cli"
	"github.com/idilsaglam/todoboard/internal/devserver"
	"github.com/idilsaglam/todoboard/internal/model"
)

var envVars = []string{
	"TODOBOARD_URL", "TODOBOARD_API_PREFIX", "TODOBOARD_THEME", "TODOBOARD_LOG_LEVEL",
	"TODOBOARD_LOG_FILE", "TODOBOARD_STRICT", "TODOBOARD_SERVE_ADDR", "TODOBOARD_USER",
}

type harness struct {
	store *devserver.Store
	url   string
	home  string
}

// newHarness starts a reference backend and isolates config and identity
// lookups in temp dirs.
func newHarness(t *testing.T) *harness {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	store := devserver.NewStore()
	srv := httptest.NewServer(devserver.New(store, nil).Handler())
	t.Cleanup(srv.Close)

	return &harness{store: store, url: srv.URL, home: home}
}

// run calls the CLI against the harness backend with the mono theme.
func (h *harness) run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	full := append([]string{"--url", h.url, "--theme", "mono"}, args...)
	code = cli.Run(full, cli.Options{
		Ctx: context.Background(),
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
	})
	return code, out.String(), errOut.String()
}

func Test_Run_PrintsHelp(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "", "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Subcommands:")

	code, _, errOut := h.run(t, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Usage:")
}

func Test_Run_Fails_When_SubcommandUnknown(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run(t, "", "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown subcommand: frobnicate")
}

func Test_Add_CreatesTodoForDefaultUser(t *testing.T) {
	h := newHarness(t)

	code, out, errOut := h.run(t, "", "add", "--body", "2%", "Buy", "milk")
	require.Equal(t, 0, code, errOut)

	items := h.store.List("test", model.NotStarted)
	require.Len(t, items, 1)
	assert.Equal(t, "Buy milk", items[0].Title)
	assert.Equal(t, "2%", items[0].Body)
	assert.Contains(t, out, "added "+items[0].ID)
}

func Test_Add_Fails_When_TitleOrBodyMissing(t *testing.T) {
	h := newHarness(t)

	code, _, _ := h.run(t, "", "add", "Buy milk")
	assert.Equal(t, 2, code)
	code, _, _ = h.run(t, "", "add", "--body", "x")
	assert.Equal(t, 2, code)
	assert.Empty(t, h.store.List("test", model.NotStarted))
}

func Test_List_GroupsByStatus(t *testing.T) {
	h := newHarness(t)
	h.store.Create("test", "write report", "")
	shipped := h.store.Create("test", "ship it", "")
	_, err := h.store.SetStatus("test", shipped.ID, model.Done)
	require.NoError(t, err)

	code, out, errOut := h.run(t, "", "ls")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Not Started 1")
	assert.Contains(t, out, "In Progress 0")
	assert.Contains(t, out, "Done 1")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "write report")
	assert.Contains(t, out, shipped.ID)
	assert.Less(t, strings.Index(out, "write report"), strings.Index(out, "ship it"))
}

func Test_List_FiltersByStatusAlias(t *testing.T) {
	h := newHarness(t)
	h.store.Create("test", "write report", "")

	code, out, _ := h.run(t, "", "ls", "done")
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "write report")
	assert.Contains(t, out, "(none)")

	code, _, _ = h.run(t, "", "ls", "someday")
	assert.Equal(t, 2, code)
}

func Test_Move_ChangesStatus(t *testing.T) {
	h := newHarness(t)
	todo := h.store.Create("test", "Buy milk", "2%")

	code, out, errOut := h.run(t, "", "mv", todo.ID, "doing")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "In Progress")

	assert.Empty(t, h.store.List("test", model.NotStarted))
	moved := h.store.List("test", model.InProgress)
	require.Len(t, moved, 1)
	assert.Equal(t, todo.ID, moved[0].ID)
	assert.Equal(t, "Buy milk", moved[0].Title)
}

func Test_Move_Fails_When_IDUnknown(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run(t, "", "mv", "nope", "done")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no todo with id nope")

	// strict mode reports the error envelope itself
	code, _, errOut = h.run(t, "", "--strict", "mv", "nope", "done")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "404")
}

func Test_Remove_DeletesTodo(t *testing.T) {
	h := newHarness(t)
	todo := h.store.Create("test", "Buy milk", "2%")

	code, out, errOut := h.run(t, "", "rm", todo.ID)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "removed Buy milk")
	assert.Empty(t, h.store.List("test", model.NotStarted))

	code, _, _ = h.run(t, "", "rm", todo.ID)
	assert.Equal(t, 1, code)
}

func Test_Run_Fails_When_BackendUnreachable(t *testing.T) {
	h := newHarness(t)
	h.url = "http://127.0.0.1:1"

	code, _, errOut := h.run(t, "", "ls")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "ls:")
}

func Test_Auth_LoginScopesLaterRequests(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "", "auth", "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "not logged in")

	code, out, errOut := h.run(t, "alice\n", "auth", "login")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "logged in as alice")

	info, err := os.Stat(filepath.Join(h.home, ".todoboard", "identity.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	code, out, _ = h.run(t, "", "auth", "whoami")
	require.Equal(t, 0, code)
	assert.Equal(t, "alice (file)\n", out)

	code, _, _ = h.run(t, "", "add", "--body", "b", "hers")
	require.Equal(t, 0, code)
	assert.Len(t, h.store.List("alice", model.NotStarted), 1)
	assert.Empty(t, h.store.List("test", model.NotStarted))

	// --user beats the saved identity
	code, out, _ = h.run(t, "", "--user", "bob", "auth", "whoami")
	require.Equal(t, 0, code)
	assert.Equal(t, "bob (flag)\n", out)

	code, _, _ = h.run(t, "", "auth", "logout")
	require.Equal(t, 0, code)
	code, out, _ = h.run(t, "", "auth", "whoami")
	require.Equal(t, 0, code)
	assert.Equal(t, "test (default)\n", out)
}

func Test_Auth_Fails_When_LoginUserEmpty(t *testing.T) {
	h := newHarness(t)

	code, _, _ := h.run(t, "\n", "auth", "login")
	assert.Equal(t, 2, code)
}

func Test_Auth_LogoutKeepsEnvIdentity(t *testing.T) {
	h := newHarness(t)
	t.Setenv("TODOBOARD_USER", "carol")

	code, out, _ := h.run(t, "", "auth", "logout")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "nothing to delete")
}

func Test_Run_Fails_When_ConfigInvalid(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.home, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"chatty\"\n"), 0o644))

	code, _, errOut := h.run(t, "", "--config", path, "ls")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "log_level")
}

func Test_Serve_ReturnsWhenContextEnds(t *testing.T) {
	newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	code := cli.Run([]string{"--theme", "mono", "serve", "--addr", "127.0.0.1:0"}, cli.Options{Ctx: ctx, Out: &out, Err: &errOut})
	assert.Equal(t, 0, code, errOut.String())
}
