package form

import (
	"bytes"
	"log"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/orochi-admin/models"
)

func newTestRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewRenderer(log.New(&buf, "", 0)), &buf
}

func TestRenderer_EveryTypeHasHandler(t *testing.T) {
	r, _ := newTestRenderer()
	for _, pt := range models.ParameterTypes {
		assert.True(t, r.HasHandler(pt), "no handler for %s", pt)
	}
}

func TestRenderer_ControlKinds(t *testing.T) {
	r, _ := newTestRenderer()
	tests := []struct {
		name     string
		param    models.ParameterDefinition
		expected ControlKind
	}{
		{"numeric", models.ParameterDefinition{Name: "n", Type: models.ParameterTypeNumeric}, ControlNumberField},
		{"integer", models.ParameterDefinition{Name: "i", Type: models.ParameterTypeInteger}, ControlNumberField},
		{"boolean", models.ParameterDefinition{Name: "b", Type: models.ParameterTypeBoolean}, ControlCheckbox},
		{"dropdown", models.ParameterDefinition{Name: "d", Type: models.ParameterTypeDropdown, Options: models.OptionList{"x"}}, ControlSelect},
		{"autocomplete", models.ParameterDefinition{Name: "a", Type: models.ParameterTypeAutocomplete, Options: models.OptionList{"x"}}, ControlAutocomplete},
		{"multi-select", models.ParameterDefinition{Name: "m", Type: models.ParameterTypeMultiSelect, Options: models.OptionList{"x"}}, ControlMultiSelect},
		{"date", models.ParameterDefinition{Name: "dt", Type: models.ParameterTypeDate}, ControlDatePicker},
		{"search", models.ParameterDefinition{Name: "s", Type: models.ParameterTypeSearch}, ControlSearch},
		{"text", models.ParameterDefinition{Name: "t", Type: models.ParameterTypeText}, ControlTextField},
		{"unknown type falls back to text", models.ParameterDefinition{Name: "u", Type: "colour"}, ControlTextField},
		{"missing type falls back to text", models.ParameterDefinition{Name: "e"}, ControlTextField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			control, update, err := r.Render(tt.param, nil)
			require.NoError(t, err)
			require.NotNil(t, update)
			assert.Equal(t, tt.expected, control.Kind)
		})
	}
}

func TestRenderer_DefaultsWithoutValue(t *testing.T) {
	r, _ := newTestRenderer()

	control, _, err := r.Render(models.ParameterDefinition{Name: "flag", Type: models.ParameterTypeBoolean}, ValueSet{})
	require.NoError(t, err)
	assert.Equal(t, false, control.Value)

	control, _, err = r.Render(models.ParameterDefinition{Name: "tags", Type: models.ParameterTypeMultiSelect, Options: models.OptionList{}}, ValueSet{})
	require.NoError(t, err)
	assert.Equal(t, []string{}, control.Value)

	control, _, err = r.Render(models.ParameterDefinition{Name: "amount", Type: models.ParameterTypeNumeric}, ValueSet{})
	require.NoError(t, err)
	assert.Equal(t, "", control.Value)
}

func TestRenderer_MissingOptionsIsConfigurationError(t *testing.T) {
	r, logs := newTestRenderer()

	for _, pt := range []models.ParameterType{models.ParameterTypeDropdown, models.ParameterTypeMultiSelect} {
		_, update, err := r.Render(models.ParameterDefinition{Name: "broken", Type: pt}, ValueSet{})
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.ErrorIs(t, err, ErrMissingOptions)
		assert.Nil(t, update)
	}
	assert.Contains(t, logs.String(), `field "broken"`)
}

func TestRenderer_AutocompleteWithoutOptions(t *testing.T) {
	r, _ := newTestRenderer()

	control, update, err := r.Render(models.ParameterDefinition{Name: "city", Type: models.ParameterTypeAutocomplete}, ValueSet{})
	require.NoError(t, err)
	assert.Equal(t, []string{}, control.Options)

	change, err := update(Input{Text: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "Paris", change.Values["city"])

	_, update, err = r.Render(models.ParameterDefinition{Name: "city", Type: models.ParameterTypeAutocomplete, Options: models.OptionList{"Tehran"}}, ValueSet{})
	require.NoError(t, err)
	_, err = update(Input{Text: "Paris"})
	assert.True(t, IsValidationError(err), "a known list still restricts the value")
}

func TestRenderer_MultiSelectKeepsSelectionOrder(t *testing.T) {
	r, _ := newTestRenderer()
	p := models.ParameterDefinition{Name: "segments", Type: models.ParameterTypeMultiSelect, Options: models.OptionList{"A", "B"}}

	for _, selection := range [][]string{{"A", "B"}, {"B", "A"}} {
		_, update, err := r.Render(p, ValueSet{})
		require.NoError(t, err)

		change, err := update(Input{Selected: selection})
		require.NoError(t, err)
		assert.Equal(t, selection, change.Values["segments"])
		assert.Equal(t, "segments", change.Key)
	}

	_, update, err := r.Render(p, ValueSet{})
	require.NoError(t, err)
	_, err = update(Input{Selected: []string{"A", "C"}})
	assert.True(t, IsValidationError(err))
}

func TestRenderer_UpdateIsCopyOnWrite(t *testing.T) {
	r, _ := newTestRenderer()
	params := []models.ParameterDefinition{
		{Name: "name", Type: models.ParameterTypeText},
		{Name: "age", Type: models.ParameterTypeInteger},
		{Name: "vip", Type: models.ParameterTypeBoolean},
		{Name: "segments", Type: models.ParameterTypeMultiSelect, Options: models.OptionList{"A", "B"}},
		{Name: "client", Type: models.ParameterTypeSearch},
		{Name: "since", Type: models.ParameterTypeDate},
	}
	inputs := map[string]Input{
		"name":     {Text: "Alice"},
		"age":      {Text: "42"},
		"vip":      {Checked: true},
		"segments": {Selected: []string{"B"}},
		"client":   {Text: "jo"},
		"since":    {Text: "2024-02-03"},
	}

	original := ValueSet{
		"name":          "Bob",
		"age":           "7",
		"vip":           false,
		"segments":      []string{"A"},
		"client_param":  "x",
		"client_ids":    "('1')",
		"since":         "2020-01-01",
		"unrelated_key": "keep",
	}
	snapshot := original.Clone()

	for _, p := range params {
		t.Run(p.Name, func(t *testing.T) {
			_, update, err := r.Render(p, original)
			require.NoError(t, err)

			change, err := update(inputs[p.Name])
			require.NoError(t, err)

			if diff := cmp.Diff(snapshot, original); diff != "" {
				t.Fatalf("original value set mutated (-want +got):\n%s", diff)
			}
			for k, v := range snapshot {
				if k == change.Key {
					continue
				}
				assert.Equal(t, v, change.Values[k], "key %s changed", k)
			}
			assert.Len(t, change.Values, len(snapshot))
		})
	}
}

func TestRenderer_StoredTypes(t *testing.T) {
	r, _ := newTestRenderer()

	_, update, err := r.Render(models.ParameterDefinition{Name: "amount", Type: models.ParameterTypeNumeric}, nil)
	require.NoError(t, err)
	change, err := update(Input{Text: "1."})
	require.NoError(t, err)
	assert.Equal(t, "1.", change.Values["amount"])

	_, update, err = r.Render(models.ParameterDefinition{Name: "vip", Type: models.ParameterTypeBoolean}, nil)
	require.NoError(t, err)
	change, err = update(Input{Checked: true})
	require.NoError(t, err)
	assert.Equal(t, true, change.Values["vip"])

	_, update, err = r.Render(models.ParameterDefinition{Name: "since", Type: models.ParameterTypeDate}, nil)
	require.NoError(t, err)
	change, err = update(Input{Text: "2024-03-05T10:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", change.Values["since"])

	_, err = update(Input{Text: "05/03/2024"})
	assert.True(t, IsValidationError(err))

	_, update, err = r.Render(models.ParameterDefinition{Name: "risk", Type: models.ParameterTypeDropdown, Options: models.OptionList{"Low", "High"}}, nil)
	require.NoError(t, err)
	change, err = update(Input{Text: "High"})
	require.NoError(t, err)
	assert.Equal(t, "High", change.Values["risk"])
	_, err = update(Input{Text: "Medium"})
	assert.True(t, IsValidationError(err))
}

func TestRenderer_SearchUsesParamKey(t *testing.T) {
	r, _ := newTestRenderer()
	p := models.ParameterDefinition{Name: "searchTerm", Type: models.ParameterTypeSearch, APIEndpoint: "/clients/search"}

	control, update, err := r.Render(p, ValueSet{"searchTerm_param": "jo"})
	require.NoError(t, err)
	assert.Equal(t, "searchTerm_param", control.ValueKey)
	assert.Equal(t, "jo", control.Value)
	assert.Equal(t, "/clients/search", control.Endpoint)

	change, err := update(Input{Text: "john"})
	require.NoError(t, err)
	assert.Equal(t, "searchTerm_param", change.Key)
	assert.True(t, change.TriggersLookup)
	assert.Equal(t, "john", change.LookupText)
	assert.Equal(t, "john", change.Values["searchTerm_param"])
}

func TestFormatIDs(t *testing.T) {
	assert.Equal(t, "('id1', 'id2')", FormatIDs([]string{"id1", "id2"}))
	assert.Equal(t, "('7')", FormatIDs([]string{"7"}))
	assert.Equal(t, "()", FormatIDs(nil))
	assert.Equal(t, "('o''brien')", FormatIDs([]string{"o'brien"}))
}

func TestParseSchema(t *testing.T) {
	params, err := ParseSchema(`[
		{"name":"riskProfile","type":"dropdown","options":["Low","High"]},
		{"name":"region","type":"dropdown","options":"north,south"},
		{"name":"client","label":"Client","type":"search","apiEndpoint":"/clients?q={query}"}
	]`)
	require.NoError(t, err)
	require.Len(t, params, 3)

	assert.Equal(t, "riskProfile", params[0].Label)
	assert.Equal(t, models.OptionList{"Low", "High"}, params[0].Options)
	assert.Nil(t, params[1].Options)
	assert.Equal(t, "/clients?q={query}", params[2].APIEndpoint)

	empty, err := ParseSchema("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseSchema(`{"name":"x"}`)
	assert.True(t, IsConfigurationError(err))

	_, err = ParseSchema(`[{"name":"a"},{"name":"a"}]`)
	assert.True(t, IsConfigurationError(err))

	_, err = ParseSchema(`[{"label":"nameless"}]`)
	assert.True(t, IsConfigurationError(err))
}
