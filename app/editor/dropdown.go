package editor

import (
	"fmt"
	"slices"
)

// PlaceholderItemName is the toolbar name of the placeholder dropdown
const PlaceholderItemName = "placeholders"

// Item is one entry of a dropdown menu
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Descriptor is what a client needs to draw a toolbar item
type Descriptor struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Command string `json:"command"`
	Enabled bool   `json:"enabled"`
	Items   []Item `json:"items,omitempty"`
}

// ToolbarItem is anything that can sit on the editor toolbar
type ToolbarItem interface {
	Name() string
	Describe() Descriptor
}

// PlaceholderDropdown lists the configured placeholder tokens and inserts the chosen one
// through a named editor command. It is disabled exactly when that command is.
type PlaceholderDropdown struct {
	label    string
	command  string
	tokens   []string
	commands *Commands
}

// NewPlaceholderDropdown creates the dropdown bound to an editor's command registry
func NewPlaceholderDropdown(cfg PlaceholderConfig, commands *Commands) *PlaceholderDropdown {
	command := cfg.Command
	if command == "" {
		command = DefaultCommand
	}
	return &PlaceholderDropdown{
		label:    cfg.Label,
		command:  command,
		tokens:   append([]string(nil), cfg.Tokens...),
		commands: commands,
	}
}

// Name returns the toolbar name
func (d *PlaceholderDropdown) Name() string {
	return PlaceholderItemName
}

// Items returns one menu entry per token, in configured order
func (d *PlaceholderDropdown) Items() []Item {
	items := make([]Item, 0, len(d.tokens))
	for _, t := range d.tokens {
		items = append(items, Item{Label: t, Value: t})
	}
	return items
}

// Enabled mirrors the bound command; a missing command disables the dropdown
func (d *PlaceholderDropdown) Enabled() bool {
	cmd, ok := d.commands.Get(d.command)
	return ok && cmd.IsEnabled()
}

// Select executes the bound command with the chosen token
func (d *PlaceholderDropdown) Select(token string) error {
	if !slices.Contains(d.tokens, token) {
		return fmt.Errorf("%w: %q", ErrUnknownPlaceholder, token)
	}
	cmd, ok := d.commands.Get(d.command)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, d.command)
	}
	if !cmd.IsEnabled() {
		return ErrCommandDisabled
	}
	return cmd.Execute(token)
}

// Describe returns the dropdown as a toolbar descriptor
func (d *PlaceholderDropdown) Describe() Descriptor {
	return Descriptor{
		Name:    d.Name(),
		Label:   d.label,
		Command: d.command,
		Enabled: d.Enabled(),
		Items:   d.Items(),
	}
}
