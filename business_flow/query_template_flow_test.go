package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryTemplateFlow(t *testing.T) {
	customers := &models.QueryTemplate{Name: "customers", Params: `[{"name": "city", "type": "text"}]`, Tags: pq.StringArray{"crm"}}
	orders := &models.QueryTemplate{Name: "orders", Params: `[]`}
	retired := &models.QueryTemplate{Name: "retired", Params: `[]`, IsActive: utils.ToPtr(false)}
	broken := &models.QueryTemplate{Name: "broken", Params: `{"name": "city"}`}
	flow := NewQueryTemplateFlow(newFakeTemplateRepo(customers, orders, retired, broken))
	ctx := context.Background()

	list, err := flow.ListTemplates(ctx, dto.ListTemplatesFilter{})
	require.NoError(t, err)
	names := []string{}
	for _, tpl := range list.Templates {
		names = append(names, tpl.Name)
		assert.Nil(t, tpl.Params, "listing leaves schemas out")
	}
	assert.Equal(t, []string{"customers", "orders", "broken"}, names)

	list, err = flow.ListTemplates(ctx, dto.ListTemplatesFilter{Tag: " crm "})
	require.NoError(t, err)
	require.Len(t, list.Templates, 1)
	assert.Equal(t, []string{"crm"}, list.Templates[0].Tags)

	got, err := flow.GetTemplate(ctx, customers.UUID.String())
	require.NoError(t, err)
	require.Len(t, got.Params, 1)
	assert.Equal(t, "city", got.Params[0].Name)

	_, err = flow.GetTemplate(ctx, retired.UUID.String())
	assert.True(t, IsTemplateInactive(err))

	_, err = flow.GetTemplate(ctx, broken.UUID.String())
	assert.True(t, IsTemplateSchemaInvalid(err))

	_, err = flow.GetTemplate(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.True(t, IsTemplateNotFound(err))
}
