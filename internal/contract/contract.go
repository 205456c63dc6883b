// Package contract checks backend responses against the JSON shapes the
// client relies on. It is wired into api.Client.Check in strict mode.
package contract

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const baseURL = "https://todoboard.local/schemas/"

// Create and delete share the attributes envelope around a full todo.
var schemaByPath = map[string]string{
	"getTodos":   "getTodos.json",
	"createTodo": "attributes.json",
	"deleteTodo": "attributes.json",
	"updateTodo": "updateTodo.json",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func load() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020

		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			compileErr = fmt.Errorf("read schemas: %w", err)
			return
		}
		for _, e := range entries {
			b, err := schemaFS.ReadFile("schemas/" + e.Name())
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", e.Name(), err)
				return
			}
			if err := c.AddResource(baseURL+e.Name(), bytes.NewReader(b)); err != nil {
				compileErr = fmt.Errorf("add %s: %w", e.Name(), err)
				return
			}
		}

		compiled = make(map[string]*jsonschema.Schema, len(schemaByPath))
		for path, name := range schemaByPath {
			s, err := c.Compile(baseURL + name)
			if err != nil {
				compileErr = fmt.Errorf("compile %s: %w", name, err)
				return
			}
			compiled[path] = s
		}
	})
	return compiled, compileErr
}

// Check validates body against the schema registered for path.
// Paths without a schema always pass. The status code is not consulted:
// an error envelope with a 2xx status fails just like one with a 4xx.
func Check(path string, status int, body []byte) error {
	schemas, err := load()
	if err != nil {
		return err
	}
	s, ok := schemas[path]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%s: response is not JSON: %w", path, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%s: unexpected response shape: %w", path, err)
	}
	return nil
}
