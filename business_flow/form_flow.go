package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/orochi-admin/app/criteria"
	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/form"
	"github.com/amirphl/orochi-admin/app/services"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/repository"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var formSessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "form_sessions_open",
	Help: "Number of open form sessions",
})

// FormFlow keeps the server-side form sessions opened from query templates
type FormFlow interface {
	OpenForm(ctx context.Context, req *dto.OpenFormRequest) (*dto.FormSessionResponse, error)
	GetForm(ctx context.Context, id string) (*dto.FormSessionResponse, error)
	ApplyField(ctx context.Context, id, name string, req *dto.ApplyFieldRequest) (*dto.FormSessionResponse, error)
	SubmitForm(ctx context.Context, id string, req *dto.SubmitFormRequest) (*dto.SubmitFormResponse, error)
	CloseForm(ctx context.Context, id string) error
	ReapIdle(now time.Time) int
	OpenSessions() int
}

// FormFlowOptions configures form sessions
type FormFlowOptions struct {
	Search        form.SearchClient
	Options       services.OptionsProvider
	Debounce      time.Duration
	LookupTimeout time.Duration
	IdleTTL       time.Duration
	MaxSessions   int
	Clock         form.Clock
	Logger        *log.Logger
	Now           func() time.Time
}

type FormFlowImpl struct {
	templateRepo repository.QueryTemplateRepository
	campaignRepo repository.CampaignRepository
	cache        *BoardCache
	opts         FormFlowOptions
	renderer     *form.Renderer
	validator    *form.FieldValidator

	mu       sync.Mutex
	sessions map[string]*form.Session
}

func NewFormFlow(
	templateRepo repository.QueryTemplateRepository,
	campaignRepo repository.CampaignRepository,
	cache *BoardCache,
	opts FormFlowOptions,
) FormFlow {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = utils.UTCNow
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = utils.FormSessionIdleTTL
	}
	return &FormFlowImpl{
		templateRepo: templateRepo,
		campaignRepo: campaignRepo,
		cache:        cache,
		opts:         opts,
		renderer:     form.NewRenderer(opts.Logger),
		validator:    form.NewFieldValidator(),
		sessions:     map[string]*form.Session{},
	}
}

// OpenForm loads a template, fetches api-sourced options and opens a session seeded with defaults
func (f *FormFlowImpl) OpenForm(ctx context.Context, req *dto.OpenFormRequest) (*dto.FormSessionResponse, error) {
	if req == nil {
		return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Query template not found", ErrTemplateNotFound)
	}
	template, params, err := loadTemplate(ctx, f.templateRepo, req.TemplateUUID)
	if err != nil {
		return nil, err
	}

	if f.opts.Options != nil {
		params, err = f.opts.Options.Resolve(ctx, params)
		if err != nil {
			message := services.DefaultRemoteErrorMessage
			var re *services.RemoteError
			if errors.As(err, &re) {
				message = re.UserMessage()
			}
			return nil, NewBusinessError("OPTIONS_UNAVAILABLE", message, fmt.Errorf("%w: %w", ErrOptionsUnavailable, err))
		}
	}

	f.mu.Lock()
	if f.opts.MaxSessions > 0 && len(f.sessions) >= f.opts.MaxSessions {
		f.mu.Unlock()
		return nil, NewBusinessError("TOO_MANY_FORM_SESSIONS", "Too many open forms, please close one and retry", ErrTooManyFormSessions)
	}
	session := form.NewSession(template.ID, params, form.SessionOptions{
		Renderer:      f.renderer,
		Validator:     f.validator,
		Client:        f.opts.Search,
		Debounce:      f.opts.Debounce,
		LookupTimeout: f.opts.LookupTimeout,
		Clock:         f.opts.Clock,
		Logger:        f.opts.Logger,
		Now:           f.opts.Now,
	})
	f.sessions[session.ID.String()] = session
	formSessionsOpen.Set(float64(len(f.sessions)))
	f.mu.Unlock()

	return sessionResponse(session), nil
}

func (f *FormFlowImpl) session(id string) (*form.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[strings.TrimSpace(id)]
	if !ok || s.Closed() {
		return nil, NewBusinessError("FORM_SESSION_NOT_FOUND", "Form session not found", ErrFormSessionNotFound)
	}
	return s, nil
}

func (f *FormFlowImpl) GetForm(ctx context.Context, id string) (*dto.FormSessionResponse, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s), nil
}

// ApplyField applies one edit. Invalid input is reported in the response errors, not as a failure.
func (f *FormFlowImpl) ApplyField(ctx context.Context, id, name string, req *dto.ApplyFieldRequest) (*dto.FormSessionResponse, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.ApplyFieldRequest{}
	}

	_, err = s.Apply(name, form.Input{Text: req.Text, Checked: req.Checked, Selected: req.Selected})
	switch {
	case err == nil, form.IsValidationError(err):
	case errors.Is(err, form.ErrUnknownField):
		return nil, NewBusinessErrorf("FORM_FIELD_NOT_FOUND", "Form field %q not found", ErrFormFieldNotFound, name)
	case errors.Is(err, form.ErrSessionClosed):
		return nil, NewBusinessError("FORM_SESSION_NOT_FOUND", "Form session not found", ErrFormSessionNotFound)
	case form.IsConfigurationError(err):
		return nil, NewBusinessErrorf("FORM_FIELD_MISCONFIGURED", "Form field %q is misconfigured", fmt.Errorf("%w: %w", ErrFormFieldMisconfigured, err), name)
	default:
		return nil, NewBusinessError("FORM_APPLY_FAILED", "Failed to apply field", err)
	}
	return sessionResponse(s), nil
}

// SubmitForm validates the session and turns it into a draft campaign carrying the encoded criteria
func (f *FormFlowImpl) SubmitForm(ctx context.Context, id string, req *dto.SubmitFormRequest) (*dto.SubmitFormResponse, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
	}
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}

	if verrs := s.Validate(); len(verrs) > 0 {
		return nil, NewBusinessError("FORM_INVALID", "Form has validation errors", fmt.Errorf("%w: %w", ErrFormInvalid, verrs))
	}

	encoded, err := criteria.Encode(s.Params(), s.Values())
	if err != nil {
		return nil, NewBusinessError("CRITERIA_ENCODE_FAILED", "Failed to encode criteria", err)
	}

	campaign := &models.Campaign{
		QueryTemplateID: utils.ToPtr(s.TemplateID),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Status:          models.CampaignStatusDraft,
		Params:          &encoded,
	}
	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "Failed to create campaign", err)
	}
	f.cache.Invalidate(ctx)
	f.remove(s)

	pairs, err := criteria.Parse(&encoded)
	if err != nil {
		return nil, NewBusinessError("MALFORMED_CRITERIA", "Campaign criteria are malformed", fmt.Errorf("%w: %w", ErrMalformedCriteria, err))
	}
	return &dto.SubmitFormResponse{
		Campaign: ToCampaignDTO(*campaign),
		Criteria: ToCriteriaDTO(pairs),
	}, nil
}

func (f *FormFlowImpl) CloseForm(ctx context.Context, id string) error {
	s, err := f.session(id)
	if err != nil {
		return err
	}
	f.remove(s)
	return nil
}

func (f *FormFlowImpl) remove(s *form.Session) {
	f.mu.Lock()
	delete(f.sessions, s.ID.String())
	formSessionsOpen.Set(float64(len(f.sessions)))
	f.mu.Unlock()
	s.Close()
}

// ReapIdle closes sessions untouched for longer than the idle TTL and returns how many it closed
func (f *FormFlowImpl) ReapIdle(now time.Time) int {
	f.mu.Lock()
	var idle []*form.Session
	for id, s := range f.sessions {
		if now.Sub(s.LastTouched()) > f.opts.IdleTTL {
			idle = append(idle, s)
			delete(f.sessions, id)
		}
	}
	formSessionsOpen.Set(float64(len(f.sessions)))
	f.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

func (f *FormFlowImpl) OpenSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func sessionResponse(s *form.Session) *dto.FormSessionResponse {
	controls, configErrs := s.Controls()
	resp := &dto.FormSessionResponse{
		SessionID: s.ID.String(),
		Controls:  controls,
		Values:    map[string]any(s.Values()),
		Errors:    map[string]string(s.Errors()),
	}
	for _, err := range configErrs {
		resp.ConfigurationErrors = append(resp.ConfigurationErrors, err.Error())
	}
	for _, p := range s.Params() {
		if p.Type.Normalize() != models.ParameterTypeSearch {
			continue
		}
		if results := s.Results(p.Name); len(results) > 0 {
			if resp.Results == nil {
				resp.Results = map[string][]form.SearchResult{}
			}
			resp.Results[p.Name] = results
		}
	}
	return resp
}
