package form

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amirphl/orochi-admin/models"
)

var (
	ErrSessionClosed = errors.New("form session is closed")
	ErrUnknownField  = errors.New("unknown form field")
)

// SessionOptions configures a form session. Zero values pick sensible defaults.
type SessionOptions struct {
	Renderer      *Renderer
	Validator     *FieldValidator
	Client        SearchClient
	Debounce      time.Duration
	LookupTimeout time.Duration
	Clock         Clock
	Logger        *log.Logger
	Now           func() time.Time
}

// Session is the explicit state of one rendered form: its schema, the current value set,
// per-field validation errors and the lookups owned by its search fields.
type Session struct {
	ID         uuid.UUID
	TemplateID uint

	mu          sync.Mutex
	params      []models.ParameterDefinition
	byName      map[string]models.ParameterDefinition
	values      ValueSet
	errors      ValidationErrors
	results     map[string][]SearchResult
	idsText     map[string]string // search text each <name>_ids was computed for
	lookups     map[string]*Lookup
	renderer    *Renderer
	validator   *FieldValidator
	closed      bool
	lastTouched time.Time
	now         func() time.Time
}

// NewSession opens a form for params, seeding the value set with parameter defaults
func NewSession(templateID uint, params []models.ParameterDefinition, opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = NewRenderer(opts.Logger)
	}
	if opts.Validator == nil {
		opts.Validator = NewFieldValidator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		ID:          uuid.New(),
		TemplateID:  templateID,
		params:      append([]models.ParameterDefinition(nil), params...),
		byName:      make(map[string]models.ParameterDefinition, len(params)),
		values:      ValueSet{},
		errors:      ValidationErrors{},
		results:     map[string][]SearchResult{},
		idsText:     map[string]string{},
		lookups:     map[string]*Lookup{},
		renderer:    opts.Renderer,
		validator:   opts.Validator,
		lastTouched: opts.Now(),
		now:         opts.Now,
	}

	for _, p := range s.params {
		s.byName[p.Name] = p
		seedDefault(s.values, p)

		if p.Type.Normalize() == models.ParameterTypeSearch && opts.Client != nil {
			param := p
			lookupOpts := LookupOptions{
				Debounce: opts.Debounce,
				Timeout:  opts.LookupTimeout,
				Clock:    opts.Clock,
				Logger:   opts.Logger,
			}
			s.lookups[p.Name] = NewLookup(param, opts.Client, lookupOpts, func(r LookupResult) {
				s.applyLookup(param, r)
			})
		}
	}
	return s
}

func seedDefault(values ValueSet, p models.ParameterDefinition) {
	if p.Default == "" {
		return
	}
	switch p.Type.Normalize() {
	case models.ParameterTypeBoolean:
		b, _ := strconv.ParseBool(p.Default)
		values[p.Name] = b
	case models.ParameterTypeMultiSelect:
		selected := []string{}
		for _, part := range strings.Split(p.Default, ",") {
			if part = strings.TrimSpace(part); part != "" {
				selected = append(selected, part)
			}
		}
		values[p.Name] = selected
	case models.ParameterTypeSearch:
		values[p.ParamKey()] = p.Default
	default:
		values[p.Name] = p.Default
	}
}

// Controls renders every field. Fields with configuration errors are left out and their
// errors returned alongside.
func (s *Session) Controls() ([]Control, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	controls := make([]Control, 0, len(s.params))
	var configErrs []error
	for _, p := range s.params {
		control, _, err := s.renderer.Render(p, s.values)
		if err != nil {
			configErrs = append(configErrs, err)
			continue
		}
		control.Error = s.errors[p.Name]
		controls = append(controls, control)
	}
	return controls, configErrs
}

// Apply routes user input to the named field. A successful change replaces the value set,
// clears the field's validation error and, for search fields, schedules a lookup.
func (s *Session) Apply(name string, in Input) (ValueSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	p, ok := s.byName[name]
	if !ok {
		return nil, ErrUnknownField
	}

	_, update, err := s.renderer.Render(p, s.values)
	if err != nil {
		return nil, err
	}
	change, err := update(in)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.errors[p.Name] = ve.Message
		}
		return s.values.Clone(), err
	}

	s.values = change.Values
	delete(s.errors, p.Name)
	s.lastTouched = s.now()

	if change.TriggersLookup {
		if strings.TrimSpace(change.LookupText) != s.idsText[p.Name] {
			delete(s.values, p.IDsKey())
			delete(s.results, p.Name)
			delete(s.idsText, p.Name)
		}
		if l, ok := s.lookups[p.Name]; ok {
			l.Schedule(change.LookupText)
		}
	}
	return s.values.Clone(), nil
}

func (s *Session) applyLookup(p models.ParameterDefinition, r LookupResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lookups[p.Name]
	if s.closed || !ok || !l.Current(r) {
		return
	}
	s.values = s.values.With(p.IDsKey(), FormatIDs(r.IDs()))
	s.results[p.Name] = append([]SearchResult(nil), r.Results...)
	s.idsText[p.Name] = r.Text
}

// Validate checks every field, replaces the current errors and returns them (nil when valid)
func (s *Session) Validate() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors = s.validator.All(s.params, s.values)
	for name := range s.lookups {
		if _, failed := s.errors[name]; failed {
			continue
		}
		p := s.byName[name]
		text := strings.TrimSpace(s.values.String(p.ParamKey()))
		if text != "" && s.idsText[name] != text {
			s.errors[name] = "search results are not ready yet, wait for the lookup to finish"
		}
	}
	if len(s.errors) == 0 {
		return nil
	}
	return s.errors.Clone()
}

// Values returns a copy of the current value set
func (s *Session) Values() ValueSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// Errors returns a copy of the current validation errors
func (s *Session) Errors() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Clone()
}

// Results returns the raw results of the last lookup for a search field
func (s *Session) Results(name string) []SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SearchResult(nil), s.results[name]...)
}

// Params returns the schema the session was opened with
func (s *Session) Params() []models.ParameterDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ParameterDefinition(nil), s.params...)
}

// LastTouched is the time of the last successful change
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// Closed reports whether the session has been torn down
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the session down; pending lookups never fire and late results are dropped
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	lookups := make([]*Lookup, 0, len(s.lookups))
	for _, l := range s.lookups {
		lookups = append(lookups, l)
	}
	s.mu.Unlock()

	for _, l := range lookups {
		l.Close()
	}
}
