package agents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// loadPrompt reads a template from the prompts directory and substitutes
// the {name} placeholders. A missing template file is a fatal error for the
// stage that needs it.
func loadPrompt(dir, name string, vars map[string]string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	tmpl := string(b)
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl, nil
}
