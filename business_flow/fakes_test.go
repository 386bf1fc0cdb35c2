package businessflow

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeCampaignRepo struct {
	mu      sync.Mutex
	nextID  uint
	rows    map[uint]*models.Campaign
	listed  int
	saveErr error
}

func newFakeCampaignRepo(campaigns ...*models.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{rows: map[uint]*models.Campaign{}}
	for _, c := range campaigns {
		_ = r.Save(context.Background(), c)
	}
	return r
}

func (r *fakeCampaignRepo) ByID(_ context.Context, id uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCampaignRepo) ByUUID(ctx context.Context, id string) (*models.Campaign, error) {
	parsed, err := utils.ParseUUID(id)
	if err != nil {
		return nil, err
	}
	found, err := r.ByFilter(ctx, models.CampaignFilter{UUID: &parsed}, "", 0, 0)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *fakeCampaignRepo) ByFilter(_ context.Context, filter models.CampaignFilter, _ string, _, _ int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed++

	out := []*models.Campaign{}
	for _, c := range r.rows {
		if filter.UUID != nil && c.UUID != *filter.UUID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.NameContains != nil && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*filter.NameContains)) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCampaignRepo) Save(_ context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	c.ID = r.nextID
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	clone := *c
	r.rows[c.ID] = &clone
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	found, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(found)), err
}

func (r *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeCampaignRepo) Update(_ context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *c
	r.rows[c.ID] = &clone
	return nil
}

func (r *fakeCampaignRepo) SetFavourite(_ context.Context, id uint, favourite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Favourite = favourite
	return nil
}

func (r *fakeCampaignRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeTemplateRepo struct {
	rows []*models.QueryTemplate
}

func newFakeTemplateRepo(templates ...*models.QueryTemplate) *fakeTemplateRepo {
	for i, t := range templates {
		t.ID = uint(i + 1)
		if t.UUID == uuid.Nil {
			t.UUID = uuid.New()
		}
		if t.IsActive == nil {
			t.IsActive = utils.ToPtr(true)
		}
	}
	return &fakeTemplateRepo{rows: templates}
}

func (r *fakeTemplateRepo) ByID(_ context.Context, id uint) (*models.QueryTemplate, error) {
	for _, t := range r.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ByUUID(_ context.Context, id string) (*models.QueryTemplate, error) {
	parsed, err := utils.ParseUUID(id)
	if err != nil {
		return nil, err
	}
	for _, t := range r.rows {
		if t.UUID == parsed {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ByName(_ context.Context, name string) (*models.QueryTemplate, error) {
	for _, t := range r.rows {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ByFilter(_ context.Context, filter models.QueryTemplateFilter, _ string, _, _ int) ([]*models.QueryTemplate, error) {
	out := []*models.QueryTemplate{}
	for _, t := range r.rows {
		if filter.IsActive != nil && utils.IsTrue(t.IsActive) != *filter.IsActive {
			continue
		}
		if filter.Tag != nil && !containsString(t.Tags, *filter.Tag) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *fakeTemplateRepo) Save(_ context.Context, t *models.QueryTemplate) error {
	r.rows = append(r.rows, t)
	return nil
}

func (r *fakeTemplateRepo) Count(ctx context.Context, filter models.QueryTemplateFilter) (int64, error) {
	found, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(found)), err
}

func (r *fakeTemplateRepo) Exists(ctx context.Context, filter models.QueryTemplateFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *models.QueryTemplate) error {
	return nil
}

type fakeAdminRepo struct {
	admins    map[string]*models.Admin
	lastLogin map[uint]int
}

func newFakeAdminRepo(admins ...*models.Admin) *fakeAdminRepo {
	r := &fakeAdminRepo{admins: map[string]*models.Admin{}, lastLogin: map[uint]int{}}
	for i, a := range admins {
		a.ID = uint(i + 1)
		a.UUID = uuid.New()
		r.admins[a.Username] = a
	}
	return r
}

func (r *fakeAdminRepo) ByID(_ context.Context, id uint) (*models.Admin, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) ByUUID(_ context.Context, id string) (*models.Admin, error) {
	for _, a := range r.admins {
		if a.UUID.String() == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) ByUsername(_ context.Context, username string) (*models.Admin, error) {
	return r.admins[username], nil
}

func (r *fakeAdminRepo) UpdateLastLogin(_ context.Context, id uint) error {
	r.lastLogin[id]++
	return nil
}

func (r *fakeAdminRepo) ByFilter(context.Context, models.AdminFilter, string, int, int) ([]*models.Admin, error) {
	out := []*models.Admin{}
	for _, a := range r.admins {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAdminRepo) Save(_ context.Context, a *models.Admin) error {
	r.admins[a.Username] = a
	return nil
}

func (r *fakeAdminRepo) Count(context.Context, models.AdminFilter) (int64, error) {
	return int64(len(r.admins)), nil
}

func (r *fakeAdminRepo) Exists(ctx context.Context, f models.AdminFilter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}
