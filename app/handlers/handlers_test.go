package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/editor"
	"github.com/amirphl/orochi-admin/app/form"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out apiResponse
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

type stubFormFlow struct {
	businessflow.FormFlow
	openErr   error
	submitErr error
}

func (s *stubFormFlow) OpenForm(context.Context, *dto.OpenFormRequest) (*dto.FormSessionResponse, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &dto.FormSessionResponse{SessionID: "s-1", Values: map[string]any{}}, nil
}

func (s *stubFormFlow) SubmitForm(context.Context, string, *dto.SubmitFormRequest) (*dto.SubmitFormResponse, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &dto.SubmitFormResponse{Campaign: dto.CampaignDTO{Name: "VIPs", Status: "draft"}}, nil
}

func (s *stubFormFlow) ApplyField(_ context.Context, id, name string, _ *dto.ApplyFieldRequest) (*dto.FormSessionResponse, error) {
	if name != "city" {
		return nil, businessflow.NewBusinessErrorf("FORM_FIELD_NOT_FOUND", "Form field %q not found", businessflow.ErrFormFieldNotFound, name)
	}
	return &dto.FormSessionResponse{SessionID: id, Errors: map[string]string{"city": "bad"}}, nil
}

func TestFormHandler(t *testing.T) {
	flow := &stubFormFlow{}
	h := NewFormHandler(flow)
	app := fiber.New()
	app.Post("/forms", h.OpenForm)
	app.Patch("/forms/:id/fields/:name", h.ApplyField)
	app.Post("/forms/:id/submit", h.SubmitForm)

	resp, body := do(t, app, http.MethodPost, "/forms", dto.OpenFormRequest{TemplateUUID: "not-a-uuid"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)

	resp, body = do(t, app, http.MethodPost, "/forms", dto.OpenFormRequest{TemplateUUID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, body.Success)

	flow.openErr = businessflow.NewBusinessError("OPTIONS_UNAVAILABLE", "upstream down", businessflow.ErrOptionsUnavailable)
	resp, body = do(t, app, http.MethodPost, "/forms", dto.OpenFormRequest{TemplateUUID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "OPTIONS_UNAVAILABLE", body.Error.Code)
	assert.Equal(t, "upstream down", body.Message)

	resp, body = do(t, app, http.MethodPatch, "/forms/s-1/fields/city", dto.ApplyFieldRequest{Text: "Paris"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "field errors travel inside a successful response")
	assert.Contains(t, string(body.Data), `"city":"bad"`)

	resp, body = do(t, app, http.MethodPatch, "/forms/s-1/fields/nope", dto.ApplyFieldRequest{})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "FORM_FIELD_NOT_FOUND", body.Error.Code)

	flow.submitErr = businessflow.NewBusinessError("FORM_INVALID", "Form has validation errors",
		fmt.Errorf("%w: %w", businessflow.ErrFormInvalid, form.ValidationErrors{"city": "this field is required"}))
	resp, body = do(t, app, http.MethodPost, "/forms/s-1/submit", dto.SubmitFormRequest{Name: "VIPs"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "FORM_INVALID", body.Error.Code)
	assert.JSONEq(t, `{"city": "this field is required"}`, string(body.Error.Details))

	flow.submitErr = nil
	resp, _ = do(t, app, http.MethodPost, "/forms/s-1/submit", dto.SubmitFormRequest{Name: "VIPs"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

type stubCampaignFlow struct {
	businessflow.CampaignFlow
}

func (stubCampaignFlow) ExportBoard(context.Context, dto.CampaignBoardFilter) (string, []byte, error) {
	return "campaigns_20240615.xlsx", []byte("PK"), nil
}

func (stubCampaignFlow) Criteria(_ context.Context, uuid string) (*dto.CampaignCriteriaResponse, error) {
	switch uuid {
	case "broken":
		return nil, businessflow.NewBusinessError("MALFORMED_CRITERIA", "Campaign criteria are malformed", businessflow.ErrMalformedCriteria)
	case "missing":
		return nil, businessflow.NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", businessflow.ErrCampaignNotFound)
	}
	return &dto.CampaignCriteriaResponse{UUID: uuid, Criteria: []dto.CriteriaPairDTO{{Key: "city", Value: "Tehran"}}}, nil
}

func (stubCampaignFlow) DeleteCampaign(context.Context, string) error {
	return fmt.Errorf("connection reset")
}

func TestCampaignHandler(t *testing.T) {
	h := NewCampaignHandler(stubCampaignFlow{})
	app := fiber.New()
	app.Get("/campaigns/export", h.ExportBoard)
	app.Get("/campaigns/:uuid/criteria", h.Criteria)
	app.Delete("/campaigns/:uuid", h.DeleteCampaign)

	resp, _ := do(t, app, http.MethodGet, "/campaigns/export?search=promo", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "campaigns_20240615.xlsx")

	resp, body := do(t, app, http.MethodGet, "/campaigns/abc/criteria", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"uuid": "abc", "criteria": [{"key": "city", "value": "Tehran"}]}`, string(body.Data))

	resp, body = do(t, app, http.MethodGet, "/campaigns/broken/criteria", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "MALFORMED_CRITERIA", body.Error.Code)

	resp, _ = do(t, app, http.MethodGet, "/campaigns/missing/criteria", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = do(t, app, http.MethodDelete, "/campaigns/abc", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "CAMPAIGN_DELETE_FAILED", body.Error.Code)
}

func TestEditorHandler(t *testing.T) {
	h := NewEditorHandler(businessflow.NewEditorFlow(editor.DefaultConfig().WithTokens([]string{"first_name"})))
	app := fiber.New()
	app.Get("/editor/placeholders", h.Placeholders)
	app.Post("/editor/preview", h.Preview)

	resp, body := do(t, app, http.MethodGet, "/editor/placeholders?read_only=true", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var toolbar dto.EditorToolbarResponse
	require.NoError(t, json.Unmarshal(body.Data, &toolbar))
	require.Len(t, toolbar.Items, 1)
	assert.False(t, toolbar.Items[0].Enabled)

	resp, body = do(t, app, http.MethodPost, "/editor/preview", dto.EditorPreviewRequest{Content: "Hi ", Token: "first_name"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"content": "Hi {{first_name}}"}`, string(body.Data))

	resp, body = do(t, app, http.MethodPost, "/editor/preview", dto.EditorPreviewRequest{Content: "Hi ", Token: "nope"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_PLACEHOLDER", body.Error.Code)

	resp, body = do(t, app, http.MethodPost, "/editor/preview", dto.EditorPreviewRequest{Token: "first_name", ReadOnly: true})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EDITOR_READ_ONLY", body.Error.Code)

	resp, body = do(t, app, http.MethodPost, "/editor/preview", dto.EditorPreviewRequest{Content: "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
}
