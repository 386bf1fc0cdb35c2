package businessflow

import (
	"context"
	"errors"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/editor"
)

// EditorFlow serves the editor toolbar and applies placeholder insertions
type EditorFlow interface {
	Toolbar(ctx context.Context, readOnly bool) (*dto.EditorToolbarResponse, error)
	Preview(ctx context.Context, req *dto.EditorPreviewRequest) (*dto.EditorPreviewResponse, error)
}

type EditorFlowImpl struct {
	cfg *editor.Config
}

func NewEditorFlow(cfg *editor.Config) EditorFlow {
	if cfg == nil {
		cfg = editor.DefaultConfig()
	}
	return &EditorFlowImpl{cfg: cfg}
}

// bind wires a placeholder dropdown to a document through the configured command
func (f *EditorFlowImpl) bind(doc *editor.Document) *editor.PlaceholderDropdown {
	commands := editor.NewCommands()
	commands.Add(f.cfg.Placeholders.Command, editor.NewInsertPlaceholder(doc))
	return editor.NewPlaceholderDropdown(f.cfg.Placeholders, commands)
}

// Toolbar lays out the toolbar for an editor in the given mode
func (f *EditorFlowImpl) Toolbar(ctx context.Context, readOnly bool) (*dto.EditorToolbarResponse, error) {
	doc := editor.NewDocument("")
	doc.SetReadOnly(readOnly)

	toolbar := editor.NewToolbar(f.cfg.Toolbar)
	if err := toolbar.Register(f.bind(doc)); err != nil {
		return nil, NewBusinessError("EDITOR_TOOLBAR_FAILED", "Failed to build editor toolbar", err)
	}
	return &dto.EditorToolbarResponse{Items: toolbar.Layout()}, nil
}

// Preview inserts the chosen placeholder into content at the cursor
func (f *EditorFlowImpl) Preview(ctx context.Context, req *dto.EditorPreviewRequest) (*dto.EditorPreviewResponse, error) {
	if req == nil {
		return nil, NewBusinessError("UNKNOWN_PLACEHOLDER", "Unknown placeholder", ErrUnknownPlaceholder)
	}

	doc := editor.NewDocument(req.Content)
	if req.Cursor != nil {
		doc.SetCursor(*req.Cursor)
	}
	doc.SetReadOnly(req.ReadOnly)

	if err := f.bind(doc).Select(req.Token); err != nil {
		switch {
		case errors.Is(err, editor.ErrUnknownPlaceholder):
			return nil, NewBusinessErrorf("UNKNOWN_PLACEHOLDER", "Unknown placeholder %q", ErrUnknownPlaceholder, req.Token)
		case errors.Is(err, editor.ErrCommandDisabled):
			return nil, NewBusinessError("EDITOR_READ_ONLY", "Editor is read-only", ErrEditorReadOnly)
		default:
			return nil, NewBusinessError("EDITOR_COMMAND_FAILED", "Failed to insert placeholder", err)
		}
	}
	return &dto.EditorPreviewResponse{Content: doc.Content()}, nil
}
