// ABOUTME: Curated conversation presets loaded from a TOML library file
// ABOUTME: Presets expand ${VAR} references so personas can embed env values

package preset

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/parley-dev/parley/internal/conversation"
)

// Preset is a named, ready-to-start conversation configuration.
type Preset struct {
	ID            string            `toml:"id" json:"id"`
	Name          string            `toml:"name" json:"name"`
	Description   string            `toml:"description" json:"description"`
	AI1           ParticipantPreset `toml:"ai1" json:"ai1"`
	AI2           ParticipantPreset `toml:"ai2" json:"ai2"`
	InitialPrompt string            `toml:"initial_prompt" json:"initial_prompt"`
	MessageLimit  int               `toml:"message_limit" json:"message_limit"`
}

type ParticipantPreset struct {
	Provider string `toml:"provider" json:"provider"`
	Model    string `toml:"model" json:"model"`
	Persona  string `toml:"persona" json:"persona"`
}

// Library is an immutable collection of presets keyed by ID.
type Library struct {
	presets map[string]Preset
}

type libraryFile struct {
	Presets []Preset `toml:"preset"`
}

// Load reads a preset library from a TOML file, expanding ${VAR}
// environment references before decoding.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file: %w", err)
	}
	return Parse(expandEnvVars(string(data)))
}

// Parse decodes a preset library from TOML text.
func Parse(text string) (*Library, error) {
	var file libraryFile
	if _, err := toml.Decode(text, &file); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}

	lib := &Library{presets: make(map[string]Preset, len(file.Presets))}
	for _, p := range file.Presets {
		if err := validatePreset(p); err != nil {
			return nil, err
		}
		if _, dup := lib.presets[p.ID]; dup {
			return nil, fmt.Errorf("duplicate preset id %q", p.ID)
		}
		lib.presets[p.ID] = p
	}
	return lib, nil
}

// Empty returns a library with no presets.
func Empty() *Library {
	return &Library{presets: map[string]Preset{}}
}

// Get looks up a preset by ID.
func (l *Library) Get(id string) (Preset, bool) {
	p, ok := l.presets[id]
	return p, ok
}

// List returns all presets sorted by name.
func (l *Library) List() []Preset {
	out := make([]Preset, 0, len(l.presets))
	for _, p := range l.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ToConfig converts a preset into a conversation config with defaults
// applied.
func (p Preset) ToConfig() conversation.Config {
	cfg := conversation.Config{
		AI1: conversation.ParticipantConfig{
			Provider: p.AI1.Provider, Model: p.AI1.Model, Persona: p.AI1.Persona,
		},
		AI2: conversation.ParticipantConfig{
			Provider: p.AI2.Provider, Model: p.AI2.Model, Persona: p.AI2.Persona,
		},
		InitialPrompt: p.InitialPrompt,
		MessageLimit:  p.MessageLimit,
	}
	cfg.ApplyDefaults()
	return cfg
}

func validatePreset(p Preset) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("preset missing id")
	case p.Name == "":
		return fmt.Errorf("preset %q missing name", p.ID)
	case p.InitialPrompt == "":
		return fmt.Errorf("preset %q missing initial_prompt", p.ID)
	case p.AI1.Provider == "" || p.AI1.Model == "":
		return fmt.Errorf("preset %q missing ai1 provider/model", p.ID)
	case p.AI2.Provider == "" || p.AI2.Model == "":
		return fmt.Errorf("preset %q missing ai2 provider/model", p.ID)
	}
	return nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}
