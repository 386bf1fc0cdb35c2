package form

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
)

// ControlKind identifies the widget a client draws for a field
type ControlKind string

const (
	ControlTextField    ControlKind = "text-field"
	ControlNumberField  ControlKind = "number-field"
	ControlCheckbox     ControlKind = "checkbox"
	ControlSelect       ControlKind = "select"
	ControlAutocomplete ControlKind = "autocomplete"
	ControlMultiSelect  ControlKind = "multi-select"
	ControlDatePicker   ControlKind = "date-picker"
	ControlSearch       ControlKind = "search-field"
)

// Control is the rendered description of one field
type Control struct {
	Kind        ControlKind `json:"kind"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	ValueKey    string      `json:"value_key"`
	Value       any         `json:"value"`
	Options     []string    `json:"options,omitempty"`
	InputMode   string      `json:"input_mode,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Endpoint    string      `json:"endpoint,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Input is what the user did to a control. Text-like fields read Text,
// checkboxes read Checked and multi-selects read Selected.
type Input struct {
	Text     string   `json:"text"`
	Checked  bool     `json:"checked"`
	Selected []string `json:"selected"`
}

// Change is the result of an update: the new value set and the one key that changed.
// Search fields also ask for a lookup with the typed text.
type Change struct {
	Values         ValueSet
	Key            string
	TriggersLookup bool
	LookupText     string
}

// UpdateFunc applies user input to the value set captured at render time
type UpdateFunc func(in Input) (Change, error)

type fieldHandler func(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error)

// Renderer maps parameter definitions to controls through a per-type handler table
type Renderer struct {
	handlers map[models.ParameterType]fieldHandler
	logger   *log.Logger
}

// NewRenderer builds a renderer with a handler for every parameter type
func NewRenderer(logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{
		handlers: map[models.ParameterType]fieldHandler{
			models.ParameterTypeNumeric:      renderNumber("decimal"),
			models.ParameterTypeInteger:      renderNumber("numeric"),
			models.ParameterTypeBoolean:      renderBoolean,
			models.ParameterTypeDropdown:     renderChoice(ControlSelect),
			models.ParameterTypeAutocomplete: renderChoice(ControlAutocomplete),
			models.ParameterTypeMultiSelect:  renderMultiSelect,
			models.ParameterTypeDate:         renderDate,
			models.ParameterTypeSearch:       renderSearch,
			models.ParameterTypeText:         renderText,
		},
		logger: logger,
	}
}

// Render produces the control for p and the function that applies input to values.
// Configuration errors are logged and returned; the caller drops the field.
func (r *Renderer) Render(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
	if values == nil {
		values = ValueSet{}
	}
	handler, ok := r.handlers[p.Type.Normalize()]
	if !ok {
		handler = renderText
	}
	control, update, err := handler(p, values)
	if err != nil {
		r.logger.Printf("form: %v", err)
		return Control{}, nil, err
	}
	return control, update, nil
}

// HasHandler reports whether t is dispatched to its own handler
func (r *Renderer) HasHandler(t models.ParameterType) bool {
	_, ok := r.handlers[t]
	return ok
}

func baseControl(p models.ParameterDefinition, kind ControlKind) Control {
	return Control{
		Kind:        kind,
		Name:        p.Name,
		Label:       p.Label,
		Description: p.Description,
		ValueKey:    p.Name,
		Required:    p.Required,
	}
}

func setText(values ValueSet, key string) UpdateFunc {
	return func(in Input) (Change, error) {
		return Change{Values: values.With(key, in.Text), Key: key}, nil
	}
}

func renderText(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
	c := baseControl(p, ControlTextField)
	c.Value = values.String(p.Name)
	return c, setText(values, p.Name), nil
}

// numbers keep the raw text so partially typed values like "-" or "1." survive
func renderNumber(inputMode string) fieldHandler {
	return func(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
		c := baseControl(p, ControlNumberField)
		c.Value = values.String(p.Name)
		c.InputMode = inputMode
		return c, setText(values, p.Name), nil
	}
}

func renderBoolean(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
	c := baseControl(p, ControlCheckbox)
	c.Value = values.Bool(p.Name)
	update := func(in Input) (Change, error) {
		return Change{Values: values.With(p.Name, in.Checked), Key: p.Name}, nil
	}
	return c, update, nil
}

func requireOptions(p models.ParameterDefinition) error {
	if p.Options == nil {
		return &ConfigurationError{Field: p.Name, Reason: fmt.Sprintf("%s field has no options", p.Type), Err: ErrMissingOptions}
	}
	return nil
}

func renderChoice(kind ControlKind) fieldHandler {
	return func(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
		// autocomplete tolerates a missing list (it may still be loading remotely)
		if kind == ControlSelect {
			if err := requireOptions(p); err != nil {
				return Control{}, nil, err
			}
		}
		options := []string(p.Options)
		if options == nil {
			options = []string{}
		}
		c := baseControl(p, kind)
		c.Value = values.String(p.Name)
		c.Options = options
		update := func(in Input) (Change, error) {
			// without a list autocomplete accepts free text
			if in.Text != "" && p.Options != nil && !slices.Contains(options, in.Text) {
				return Change{}, &ValidationError{Field: p.Name, Message: fmt.Sprintf("%q is not one of the available options", in.Text)}
			}
			return Change{Values: values.With(p.Name, in.Text), Key: p.Name}, nil
		}
		return c, update, nil
	}
}

func renderMultiSelect(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
	if err := requireOptions(p); err != nil {
		return Control{}, nil, err
	}
	options := []string(p.Options)
	c := baseControl(p, ControlMultiSelect)
	c.Value = values.Strings(p.Name)
	c.Options = options
	update := func(in Input) (Change, error) {
		selected := make([]string, 0, len(in.Selected))
		for _, v := range in.Selected {
			if !slices.Contains(options, v) {
				return Change{}, &ValidationError{Field: p.Name, Message: fmt.Sprintf("%q is not one of the available options", v)}
			}
			if !slices.Contains(selected, v) {
				selected = append(selected, v)
			}
		}
		return Change{Values: values.With(p.Name, selected), Key: p.Name}, nil
	}
	return c, update, nil
}

func renderDate(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
	c := baseControl(p, ControlDatePicker)
	c.Value = values.String(p.Name)
	update := func(in Input) (Change, error) {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return Change{Values: values.With(p.Name, ""), Key: p.Name}, nil
		}
		iso, err := utils.ParseISODate(text)
		if err != nil {
			return Change{}, &ValidationError{Field: p.Name, Message: "date must be formatted as YYYY-MM-DD"}
		}
		return Change{Values: values.With(p.Name, iso), Key: p.Name}, nil
	}
	return c, update, nil
}

func renderSearch(p models.ParameterDefinition, values ValueSet) (Control, UpdateFunc, error) {
	c := baseControl(p, ControlSearch)
	c.ValueKey = p.ParamKey()
	c.Value = values.String(p.ParamKey())
	c.Endpoint = p.APIEndpoint
	update := func(in Input) (Change, error) {
		return Change{
			Values:         values.With(p.ParamKey(), in.Text),
			Key:            p.ParamKey(),
			TriggersLookup: true,
			LookupText:     in.Text,
		}, nil
	}
	return c, update, nil
}

// FormatIDs renders lookup ids as the SQL list fragment consumed by query templates,
// e.g. ('id1', 'id2'). Embedded quotes are doubled.
func FormatIDs(ids []string) string {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, "'"+strings.ReplaceAll(id, "'", "''")+"'")
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}
