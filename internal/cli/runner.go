package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/todoboard/internal/api"
	"github.com/idilsaglam/todoboard/internal/config"
	"github.com/idilsaglam/todoboard/internal/contract"
	"github.com/idilsaglam/todoboard/internal/devserver"
	"github.com/idilsaglam/todoboard/internal/identity"
	"github.com/idilsaglam/todoboard/internal/logging"
	"github.com/idilsaglam/todoboard/internal/model"
	"github.com/idilsaglam/todoboard/internal/querycache"
	"github.com/idilsaglam/todoboard/internal/todos"
	"github.com/idilsaglam/todoboard/internal/tui"
	"github.com/idilsaglam/todoboard/internal/ui"
)

// Options wires the runner to its process. Nil fields default to the
// os standard streams and a background context.
type Options struct {
	Ctx context.Context
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (o *Options) fill() {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
}

// rootFlags apply to every subcommand and must come before it.
type rootFlags struct {
	configPath string
	url        string
	user       string
	theme      string
	logLevel   string
	logFile    string
	strict     bool
}

type env struct {
	Options
	flags  rootFlags
	cfg    config.Config
	logger *log.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	opt.fill()

	var rf rootFlags
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&rf.configPath, "config", "c", "", "config file")
	fs.StringVar(&rf.url, "url", "", "backend base URL")
	fs.StringVarP(&rf.user, "user", "u", "", "user sent in the user header")
	fs.StringVar(&rf.theme, "theme", "", "classic, neon or mono")
	fs.StringVar(&rf.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&rf.logFile, "log-file", "", "append logs to this file")
	fs.BoolVar(&rf.strict, "strict", false, "validate backend responses")
	help := fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		ui.Fail(opt.Err, err.Error())
		PrintHelp(opt.Err)
		return 2
	}
	if *help {
		PrintHelp(opt.Out)
		return 0
	}
	rest := fs.Args()
	if len(rest) == 0 {
		PrintHelp(opt.Err)
		return 2
	}
	cmd, a := rest[0], rest[1:]

	if cmd == "help" {
		PrintHelp(opt.Out)
		return 0
	}
	if _, known := commands[cmd]; !known {
		ui.Fail(opt.Err, "unknown subcommand: "+cmd)
		fmt.Fprintln(opt.Err)
		PrintHelp(opt.Err)
		return 2
	}

	overrides := config.Overrides{
		BaseURL:  rf.url,
		Theme:    rf.theme,
		LogLevel: rf.logLevel,
		LogFile:  rf.logFile,
	}
	if fs.Changed("strict") {
		overrides.Strict = &rf.strict
	}
	cfg, err := config.Load(config.LoadInput{ConfigPath: rf.configPath, Overrides: overrides})
	if err != nil {
		ui.Fail(opt.Err, "config: "+err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	// the board owns the terminal; without a log file its logs are dropped
	fallback := opt.Err
	if cmd == "board" {
		fallback = io.Discard
	}
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Fallback: fallback})
	if err != nil {
		ui.Fail(opt.Err, err.Error())
		return 1
	}
	defer closer.Close()

	e := &env{Options: opt, flags: rf, cfg: cfg, logger: logger}
	return commands[cmd](e, a)
}

var commands = map[string]func(*env, []string) int{
	"board": doBoard,
	"ls":    doList,
	"add":   doAdd,
	"mv":    doMove,
	"rm":    doRemove,
	"auth":  doAuth,
	"serve": doServe,
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a todo board for the terminal

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  board                        Open the interactive board
  ls [status]                  List todos grouped by status
  add --body <text> <title...> Add a todo (title can be multiple words)
  mv <id> <status>             Move a todo to not_started, in_progress or done
  rm <id>                      Delete a todo
  auth <login|logout|status|whoami>
                               Manage the user sent to the backend
  serve [--addr host:port]     Run the in-memory reference backend

Flags:
  -c, --config <file>   config file (default ~/.config/todoboard/config.toml)
      --url <url>       backend base URL (default http://localhost:8080)
  -u, --user <name>     user sent in the user header
      --theme <name>    classic, neon or mono
      --log-level <lvl> debug, info, warn or error
      --log-file <file> append logs to this file
      --strict          validate backend responses against their schemas

Examples:
  todo serve &
  todo add --body "2%" Buy milk
  todo ls doing
  todo mv 0b9c... done
`)
}

// service builds the typed client from config, identity and flags.
func (e *env) service() (*todos.Service, identity.Info, error) {
	who, err := identity.Resolve(e.flags.user, e.cfg.User, api.DefaultUser)
	if err != nil {
		return nil, identity.Info{}, fmt.Errorf("identity: %w", err)
	}
	c := api.New(e.cfg.BaseURL, who.User)
	c.Prefix = e.cfg.APIPrefix
	c.Logger = e.logger
	if e.cfg.Strict {
		c.Check = contract.Check
	}
	e.logger.Debug("client", "url", e.cfg.BaseURL, "user", who.User, "source", who.Source, "strict", e.cfg.Strict)
	return todos.New(c), who, nil
}

// subFlags is a quiet FlagSet; callers print their own usage line.
func (e *env) subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// -------------- subcommand impls ----------------

func doBoard(e *env, a []string) int {
	if len(a) != 0 {
		ui.Fail(e.Err, "usage: todo board")
		return 2
	}
	svc, who, err := e.service()
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}
	ctx, stop := signal.NotifyContext(e.Ctx, syscall.SIGTERM)
	defer stop()

	err = tui.Run(ctx, svc, querycache.New(), tui.Options{User: who.User, Logger: e.logger})
	if err := boardErr(ctx, err); err != nil {
		ui.Fail(e.Err, "board: "+err.Error())
		return 1
	}
	return 0
}

// boardErr drops the error the program returns when ctx ends it; a signal
// is a normal way to leave the board.
func boardErr(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func doList(e *env, a []string) int {
	statuses := model.Statuses
	switch len(a) {
	case 0:
	case 1:
		s, err := model.ParseStatus(a[0])
		if err != nil {
			ui.Fail(e.Err, "ls: "+err.Error())
			return 2
		}
		statuses = []model.Status{s}
	default:
		ui.Fail(e.Err, "usage: todo ls [status]")
		return 2
	}

	svc, _, err := e.service()
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}

	groups := make(map[model.Status][]model.Todo, len(statuses))
	total := 0
	for _, s := range statuses {
		res, err := svc.GetTodos(e.Ctx, todos.GetTodosRequest{Type: s})
		if err != nil {
			ui.Fail(e.Err, "ls: "+err.Error())
			return 1
		}
		groups[s] = res.Items
		total += len(res.Items)
	}

	t := ui.Current()
	counts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		counts = append(counts, fmt.Sprintf("%s %d", ui.StatusStyle(s).Render(s.Label()), len(groups[s])))
	}
	lines := []string{
		t.Title.Render("Todos") + "  " + strings.Join(counts, "  ") + "  " + t.Accent.Render("Total") + fmt.Sprintf(" %d", total),
	}
	if len(statuses) == len(model.Statuses) {
		lines = append(lines, t.Muted.Render(ui.ProgressBar(len(groups[model.Done]), total, 28)))
	}
	lines = append(lines, "")

	width := ui.TermWidth() - 8
	for i, s := range statuses {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, ui.StatusStyle(s).Bold(true).Render(s.Label()))
		lines = append(lines, todoLines(groups[s], width)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render(`Tip: add with todo add --body "2%" Buy milk`))
	ui.Panel(e.Out, lines)
	return 0
}

// -------------- rendering helpers --------------

func todoLines(items []model.Todo, width int) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("(none)")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		line := it.Title
		if body := firstLine(it.Body); body != "" {
			line += ": " + body
		}
		line = ui.Truncate(line, width-len(it.ID)-4)
		out = append(out, fmt.Sprintf("%s %s  %s", t.Pending.Render(t.SymBullet), line, t.Muted.Render(it.ID)))
	}
	return out
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	return s
}

func doAdd(e *env, a []string) int {
	fs := e.subFlags("add")
	body := fs.StringP("body", "b", "", "todo description")
	if err := fs.Parse(a); err != nil {
		ui.Fail(e.Err, "add: "+err.Error())
		return 2
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" || strings.TrimSpace(*body) == "" {
		ui.Fail(e.Err, "usage: todo add --body <text> <title...>")
		return 2
	}

	svc, _, err := e.service()
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}
	t, err := svc.CreateTodo(e.Ctx, todos.CreateTodoRequest{Title: title, Body: *body})
	if err != nil {
		ui.Fail(e.Err, "add: "+err.Error())
		return 1
	}
	if t.ID == "" {
		ui.Fail(e.Err, "add: backend returned no todo")
		return 1
	}
	ui.OK(e.Out, "added "+t.ID)
	return 0
}

func doMove(e *env, a []string) int {
	if len(a) != 2 {
		ui.Fail(e.Err, "usage: todo mv <id> <status>")
		return 2
	}
	to, err := model.ParseStatus(a[1])
	if err != nil {
		ui.Fail(e.Err, "mv: "+err.Error())
		return 2
	}

	svc, _, err := e.service()
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}
	res, err := svc.UpdateTodo(e.Ctx, todos.UpdateTodoRequest{ID: a[0], Type: to})
	if err != nil {
		ui.Fail(e.Err, "mv: "+err.Error())
		return 1
	}
	// error bodies decode to an empty envelope outside strict mode
	if res.ID == "" {
		ui.Fail(e.Err, "mv: no todo with id "+a[0])
		fmt.Fprintln(e.Err, ui.Current().Muted.Render("Hint: run `todo ls` to see ids"))
		return 1
	}
	ui.OK(e.Out, fmt.Sprintf("moved %s to %s", res.ID, res.Type.Label()))
	return 0
}

func doRemove(e *env, a []string) int {
	if len(a) != 1 {
		ui.Fail(e.Err, "usage: todo rm <id>")
		return 2
	}

	svc, _, err := e.service()
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}
	t, err := svc.DeleteTodo(e.Ctx, todos.DeleteTodoRequest{ID: a[0]})
	if err != nil {
		ui.Fail(e.Err, "rm: "+err.Error())
		return 1
	}
	if t.ID == "" {
		ui.Fail(e.Err, "rm: no todo with id "+a[0])
		fmt.Fprintln(e.Err, ui.Current().Muted.Render("Hint: run `todo ls` to see ids"))
		return 1
	}
	ui.OK(e.Out, "removed "+t.Title)
	return 0
}

func doServe(e *env, a []string) int {
	fs := e.subFlags("serve")
	addr := fs.String("addr", e.cfg.ServeAddr, "listen address")
	if err := fs.Parse(a); err != nil || fs.NArg() != 0 {
		ui.Fail(e.Err, "usage: todo serve [--addr host:port]")
		return 2
	}

	ctx, stop := signal.NotifyContext(e.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := devserver.New(devserver.NewStore(), e.logger)
	if err := srv.ListenAndServe(ctx, *addr); err != nil && !errors.Is(err, context.Canceled) {
		ui.Fail(e.Err, "serve: "+err.Error())
		return 1
	}
	return 0
}
