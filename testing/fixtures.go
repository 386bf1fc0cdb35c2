package testing

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// TestAdminPassword is the plain password of every fixture admin
const TestAdminPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAdmin creates an admin with a random username and TestAdminPassword
func (tf *TestFixtures) CreateTestAdmin(active bool) (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("admin_%09d", rand.Intn(1000000000)),
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(active),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateTestTemplate creates a query template with the given schema and tags
func (tf *TestFixtures) CreateTestTemplate(name string, params []models.ParameterDefinition, tags ...string) (*models.QueryTemplate, error) {
	if params == nil {
		params = []models.ParameterDefinition{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	template := &models.QueryTemplate{
		Name:        name,
		Description: "fixture template " + name,
		Params:      string(raw),
		Tags:        pq.StringArray(tags),
	}
	if err := tf.DB.DB.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create test template: %w", err)
	}
	return template, nil
}

// CreateTestCampaign creates a campaign created at createdAt
func (tf *TestFixtures) CreateTestCampaign(name string, status models.CampaignStatus, createdAt time.Time, templateID *uint) (*models.Campaign, error) {
	campaign := &models.Campaign{
		Name:            name,
		Status:          status,
		CreatedAt:       createdAt,
		QueryTemplateID: templateID,
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}
