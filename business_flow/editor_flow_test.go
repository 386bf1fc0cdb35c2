package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/editor"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorToolbar(t *testing.T) {
	flow := NewEditorFlow(editor.DefaultConfig().WithTokens([]string{"first_name", "city"}))

	resp, err := flow.Toolbar(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	assert.Equal(t, editor.PlaceholderItemName, item.Name)
	assert.Equal(t, editor.DefaultCommand, item.Command)
	assert.True(t, item.Enabled)
	assert.Equal(t, []editor.Item{{Label: "first_name", Value: "first_name"}, {Label: "city", Value: "city"}}, item.Items)

	resp, err = flow.Toolbar(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, resp.Items[0].Enabled, "a read-only editor disables the dropdown")
}

func TestEditorPreview(t *testing.T) {
	flow := NewEditorFlow(editor.DefaultConfig().WithTokens([]string{"first_name"}))
	ctx := context.Background()

	resp, err := flow.Preview(ctx, &dto.EditorPreviewRequest{Content: "Hi !", Cursor: utils.ToPtr(3), Token: "first_name"})
	require.NoError(t, err)
	assert.Equal(t, "Hi {{first_name}}!", resp.Content)

	resp, err = flow.Preview(ctx, &dto.EditorPreviewRequest{Content: "سلام ", Token: "first_name"})
	require.NoError(t, err)
	assert.Equal(t, "سلام {{first_name}}", resp.Content)

	_, err = flow.Preview(ctx, &dto.EditorPreviewRequest{Content: "x", Token: "last_name"})
	assert.True(t, IsUnknownPlaceholder(err))

	_, err = flow.Preview(ctx, &dto.EditorPreviewRequest{Content: "x", Token: "first_name", ReadOnly: true})
	assert.True(t, IsEditorReadOnly(err))
}
