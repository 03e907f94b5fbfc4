// Package envcfg provides an immutable snapshot of the process environment.
// The resolver and all pipeline stages read configuration exclusively through
// an Environ value built once at startup; nothing in the codebase mutates or
// re-reads the global environment after that.
package envcfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environ is an immutable set of environment variables.
type Environ struct {
	vars map[string]string
}

// System captures the current process environment.
func System() Environ {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return Environ{vars: vars}
}

// FromMap builds an Environ from an explicit map. Primarily for tests.
func FromMap(m map[string]string) Environ {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return Environ{vars: vars}
}

// WithDotenv returns a copy of the snapshot with values from the given .env
// file filled in. Variables already present in the snapshot win; the file
// only supplies defaults for local runs outside the CI host.
func (e Environ) WithDotenv(path string) (Environ, error) {
	fileVars, err := godotenv.Read(path)
	if err != nil {
		return Environ{}, fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	vars := make(map[string]string, len(e.vars)+len(fileVars))
	for k, v := range fileVars {
		vars[k] = v
	}
	for k, v := range e.vars {
		vars[k] = v
	}
	return Environ{vars: vars}, nil
}

// Lookup reports the value of a variable and whether it is set.
func (e Environ) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of a variable, or def if it is unset or empty.
func (e Environ) Get(key, def string) string {
	if v, ok := e.vars[key]; ok && v != "" {
		return v
	}
	return def
}

// Bool reports whether a variable is set to a truthy value. The CI host
// exposes checkbox parameters as the literal strings "true"/"false".
func (e Environ) Bool(key string) bool {
	switch strings.ToLower(e.vars[key]) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// Int returns the integer value of a variable, or def if it is unset or
// not a valid integer.
func (e Environ) Int(key string, def int) int {
	v, ok := e.vars[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Require verifies that every named variable is set and non-empty. The error
// names all missing variables so a misconfigured job fails fast with one
// actionable message before any build step runs.
func (e Environ) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if v, ok := e.vars[k]; !ok || v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
