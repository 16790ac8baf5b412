// Package mcp exposes markdown command files as prompts over a
// JSON-RPC 2.0 stdio loop, the Model Context Protocol surface a prompt
// client expects: prompts/list, prompts/get, resources/list,
// resources/read.
package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is one markdown command file: YAML frontmatter plus a prompt
// body that may contain a $ARGUMENTS placeholder.
type Command struct {
	Name        string
	Description string
	Body        string
	Path        string
}

type frontmatter struct {
	Description string `yaml:"description"`
}

// LoadCommands reads every *.md file in dir. Files without a frontmatter
// block are skipped; a file with broken YAML still loads with an empty
// description.
func LoadCommands(dir string) (map[string]Command, error) {
	commands := make(map[string]Command)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return commands, nil
		}
		return nil, fmt.Errorf("read commands dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		cmd, ok := parseCommand(string(data))
		if !ok {
			continue
		}
		cmd.Name = strings.TrimSuffix(entry.Name(), ".md")
		cmd.Path = path
		commands[cmd.Name] = cmd
	}
	return commands, nil
}

func parseCommand(content string) (Command, bool) {
	if !strings.HasPrefix(content, "---") {
		return Command{}, false
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return Command{}, false
	}

	var fm frontmatter
	// Broken frontmatter degrades to an empty description.
	_ = yaml.Unmarshal([]byte(parts[1]), &fm)

	return Command{
		Description: fm.Description,
		Body:        strings.TrimSpace(parts[2]),
	}, true
}

// Render substitutes $ARGUMENTS with the user input. Without input the
// placeholder is left in place.
func (c Command) Render(arguments string) string {
	if arguments == "" {
		return c.Body
	}
	return strings.ReplaceAll(c.Body, "$ARGUMENTS", arguments)
}

// sortedNames returns command names in lexical order for stable listings.
func sortedNames(commands map[string]Command) []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
