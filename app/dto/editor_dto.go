package dto

import "github.com/amirphl/orochi-admin/app/editor"

// EditorToolbarResponse lays out the configured toolbar items
type EditorToolbarResponse struct {
	Items []editor.Descriptor `json:"items"`
}

// EditorPreviewRequest inserts a placeholder into content at the cursor (end when absent)
type EditorPreviewRequest struct {
	Content  string `json:"content" validate:"max=100000"`
	Cursor   *int   `json:"cursor,omitempty" validate:"omitempty,gte=0"`
	Token    string `json:"token" validate:"required,max=100"`
	ReadOnly bool   `json:"read_only"`
}

type EditorPreviewResponse struct {
	Content string `json:"content"`
}
