package editor

import (
	"errors"
	"sync"
	"unicode/utf8"
)

var (
	ErrCommandNotFound    = errors.New("editor command not found")
	ErrCommandDisabled    = errors.New("editor command is disabled")
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrDuplicateItem      = errors.New("toolbar item already registered")
)

// Command is an editor command a toolbar item can execute
type Command interface {
	Execute(arg string) error
	IsEnabled() bool
}

// Commands is the per-editor command registry
type Commands struct {
	mu     sync.RWMutex
	byName map[string]Command
}

// NewCommands creates an empty registry
func NewCommands() *Commands {
	return &Commands{byName: map[string]Command{}}
}

// Add registers cmd under name, replacing any previous command
func (c *Commands) Add(name string, cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[name] = cmd
}

// Get returns the command registered under name
func (c *Commands) Get(name string) (Command, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cmd, ok := c.byName[name]
	return cmd, ok
}

// Document is a minimal text model with a caret, enough to host the placeholder command
type Document struct {
	mu       sync.Mutex
	content  []rune
	cursor   int
	readOnly bool
}

// NewDocument creates a document with the caret at the end
func NewDocument(content string) *Document {
	runes := []rune(content)
	return &Document{content: runes, cursor: len(runes)}
}

// SetCursor moves the caret to a rune offset, clamped to the content
func (d *Document) SetCursor(pos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = max(0, min(pos, len(d.content)))
}

// SetReadOnly toggles editing
func (d *Document) SetReadOnly(readOnly bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readOnly = readOnly
}

// Content returns the current text
func (d *Document) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.content)
}

func (d *Document) insert(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readOnly {
		return ErrCommandDisabled
	}
	ins := []rune(text)
	out := make([]rune, 0, len(d.content)+len(ins))
	out = append(out, d.content[:d.cursor]...)
	out = append(out, ins...)
	out = append(out, d.content[d.cursor:]...)
	d.content = out
	d.cursor += utf8.RuneCountInString(text)
	return nil
}

// InsertPlaceholder inserts {{token}} at the caret of a document
type InsertPlaceholder struct {
	doc *Document
}

// NewInsertPlaceholder binds the command to doc
func NewInsertPlaceholder(doc *Document) *InsertPlaceholder {
	return &InsertPlaceholder{doc: doc}
}

// Execute inserts the token
func (c *InsertPlaceholder) Execute(token string) error {
	return c.doc.insert(FormatPlaceholder(token))
}

// IsEnabled is false while the document is read-only
func (c *InsertPlaceholder) IsEnabled() bool {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return !c.doc.readOnly
}

// FormatPlaceholder returns the document markup of a placeholder token
func FormatPlaceholder(token string) string {
	return "{{" + token + "}}"
}
