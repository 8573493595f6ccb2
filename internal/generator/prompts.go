package generator

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type Prompts struct {
	TaskGeneration Prompt `yaml:"task_generation"`
}

// LoadPrompts decodes the embedded prompt catalogue.
func LoadPrompts() (Prompts, error) {
	var p Prompts
	err := yaml.Unmarshal(promptsYAML, &p)
	if err != nil {
		return Prompts{}, fmt.Errorf("decode prompts: %w", err)
	}
	if strings.TrimSpace(p.TaskGeneration.System) == "" {
		return Prompts{}, fmt.Errorf("decode prompts: task_generation.system is empty")
	}
	return p, nil
}

// Render replaces every {key} in the prompt with vars[key].
func (p Prompt) Render(vars map[string]string) (system, user string) {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	return strings.TrimSpace(r.Replace(p.System)), strings.TrimSpace(r.Replace(p.User))
}
