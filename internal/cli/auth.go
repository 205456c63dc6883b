package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/idilsaglam/todoboard/internal/api"
	"github.com/idilsaglam/todoboard/internal/identity"
	"github.com/idilsaglam/todoboard/internal/ui"
)

// ---------------------------------------------------
// Auth subcommands. The "user" header is a placeholder identity, so
// login just remembers a name.
// ---------------------------------------------------

func doAuth(e *env, a []string) int {
	usage := "usage: todo auth <login [user]|logout|status|whoami>"
	if len(a) == 0 {
		ui.Fail(e.Err, usage)
		return 2
	}
	switch a[0] {
	case "login":
		if len(a) > 2 {
			ui.Fail(e.Err, usage)
			return 2
		}
		return doAuthLogin(e, a[1:])
	case "logout":
		return doAuthLogout(e)
	case "status":
		return doAuthStatus(e)
	case "whoami":
		return doAuthWhoAmI(e)
	}
	ui.Fail(e.Err, usage)
	return 2
}

func doAuthLogin(e *env, a []string) int {
	var user string
	if len(a) == 1 {
		user = a[0]
	} else {
		var err error
		if user, err = e.prompt("User name: "); err != nil {
			ui.Fail(e.Err, "read user: "+err.Error())
			return 1
		}
	}
	if strings.TrimSpace(user) == "" {
		ui.Fail(e.Err, "login: empty user")
		return 2
	}
	if err := identity.Set(user); err != nil {
		ui.Fail(e.Err, "save user: "+err.Error())
		return 1
	}
	ui.OK(e.Out, "logged in as "+strings.TrimSpace(user))
	return 0
}

// prompt reads one line, with line editing when reading the real stdin.
func (e *env) prompt(label string) (string, error) {
	if e.In == os.Stdin {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		s, err := line.Prompt(label)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errors.New("aborted")
		}
		return s, err
	}

	fmt.Fprint(e.Out, label)
	s, err := bufio.NewReader(e.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func doAuthLogout(e *env) int {
	info, _ := identity.Get()
	if info != nil && info.Source == "env" {
		ui.OK(e.Out, "user is provided by "+identity.EnvVar+" env var (nothing to delete)")
		return 0
	}
	if err := identity.Delete(); err != nil {
		ui.Fail(e.Err, "logout: "+err.Error())
		return 1
	}
	ui.OK(e.Out, "logged out")
	return 0
}

func doAuthStatus(e *env) int {
	info, err := identity.Get()
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}
	t := ui.Current()
	if info == nil {
		fmt.Fprintln(e.Out, t.Muted.Render("not logged in"))
		fmt.Fprintln(e.Out, "Run: todo auth login")
		return 0
	}
	fmt.Fprintf(e.Out, "user: %s\n", info.User)
	fmt.Fprintf(e.Out, "source: %s\n", info.Source)
	if !info.CreatedAt.IsZero() {
		fmt.Fprintf(e.Out, "saved: %s\n", info.CreatedAt.UTC().Format("2006-01-02 15:04:05Z"))
	}
	if p, err := identity.Path(); err == nil {
		fmt.Fprintf(e.Out, "file: %s\n", p)
	}
	fmt.Fprintln(e.Out, "env override: "+identity.EnvVar)
	return 0
}

// whoami prints the user the next request would carry.
func doAuthWhoAmI(e *env) int {
	who, err := identity.Resolve(e.flags.user, e.cfg.User, api.DefaultUser)
	if err != nil {
		ui.Fail(e.Err, err.Error())
		return 1
	}
	fmt.Fprintf(e.Out, "%s (%s)\n", who.User, who.Source)
	return 0
}
