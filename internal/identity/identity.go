// Package identity stores the placeholder user name the client forwards in
// the "user" header. It is not authentication: nothing is verified.
package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

const (
	fileName = "identity.json"
	EnvVar   = "TODOBOARD_USER"
)

type Info struct {
	User      string    `json:"user"`
	Source    string    `json:"source"`     // "flag" | "env" | "file" | "config" | "default"
	CreatedAt time.Time `json:"created_at"` // when it was saved to file
}

func dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".todoboard"), nil
}

// Path is where `auth login` saves the identity.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Get returns the identity from TODOBOARD_USER or the saved file.
// (nil, nil) means neither is set.
func Get() (*Info, error) {
	if env := strings.TrimSpace(os.Getenv(EnvVar)); env != "" {
		return &Info{User: env, Source: "env"}, nil
	}

	p, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read identity: %w", err)
	}
	var info Info
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	info.User = strings.TrimSpace(info.User)
	if info.User == "" {
		return nil, nil
	}
	info.Source = "file"
	return &info, nil
}

// Set saves user to the identity file, readable by the owner only.
func Set(user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return fmt.Errorf("empty user")
	}
	if strings.ContainsAny(user, "\r\n") {
		return fmt.Errorf("user must be a single line")
	}
	d, err := dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(Info{User: user, Source: "file", CreatedAt: time.Now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p := filepath.Join(d, fileName)
	if err := atomic.WriteFile(p, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	// atomic.WriteFile keeps the temp file's mode; tighten it.
	if err := os.Chmod(p, 0o600); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return nil
}

func Delete() error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Resolve picks the header value: flag, then env or saved file, then the
// config file's user, then fallback.
func Resolve(flagUser, configUser, fallback string) (Info, error) {
	if u := strings.TrimSpace(flagUser); u != "" {
		return Info{User: u, Source: "flag"}, nil
	}
	info, err := Get()
	if err != nil {
		return Info{}, err
	}
	if info != nil {
		return *info, nil
	}
	if u := strings.TrimSpace(configUser); u != "" {
		return Info{User: u, Source: "config"}, nil
	}
	return Info{User: fallback, Source: "default"}, nil
}
