package form

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/amirphl/orochi-admin/models"
)

func testParams() []models.ParameterDefinition {
	return []models.ParameterDefinition{
		{Name: "riskProfile", Label: "Risk", Type: models.ParameterTypeDropdown, Options: models.OptionList{"Low", "High"}, Required: true},
		{Name: "minBalance", Type: models.ParameterTypeNumeric},
		{Name: "vip", Type: models.ParameterTypeBoolean, Default: "true"},
		{Name: "segments", Type: models.ParameterTypeMultiSelect, Options: models.OptionList{"A", "B"}, Default: "B"},
		{Name: "searchTerm", Type: models.ParameterTypeSearch, APIEndpoint: "/clients?q={query}"},
		{Name: "broken", Type: models.ParameterTypeDropdown},
	}
}

// blockingClient waits for its context and then answers anyway
type blockingClient struct {
	started chan struct{}
}

func (c *blockingClient) Search(ctx context.Context, _ string, _ string) ([]SearchResult, error) {
	close(c.started)
	<-ctx.Done()
	return []SearchResult{{ID: "late"}}, nil
}

func TestSession_DefaultsAndControls(t *testing.T) {
	var logs bytes.Buffer
	s := NewSession(1, testParams(), SessionOptions{Logger: log.New(&logs, "", 0)})
	defer s.Close()

	values := s.Values()
	assert.Equal(t, true, values["vip"])
	assert.Equal(t, []string{"B"}, values["segments"])

	controls, configErrs := s.Controls()
	require.Len(t, configErrs, 1)
	assert.True(t, IsConfigurationError(configErrs[0]))
	require.Len(t, controls, 5)
	for _, c := range controls {
		assert.NotEqual(t, "broken", c.Name)
	}
}

func TestSession_ValidationErrorClearedOnChange(t *testing.T) {
	s := NewSession(1, testParams(), SessionOptions{})
	defer s.Close()

	errs := s.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "riskProfile")

	_, err := s.Apply("minBalance", Input{Text: "10"})
	require.NoError(t, err)
	assert.Contains(t, s.Errors(), "riskProfile", "editing another field keeps the error")

	_, err = s.Apply("riskProfile", Input{Text: "High"})
	require.NoError(t, err)
	assert.NotContains(t, s.Errors(), "riskProfile")

	controls, _ := s.Controls()
	for _, c := range controls {
		assert.Empty(t, c.Error)
	}
	assert.Nil(t, s.Validate())
}

func TestSession_ApplyErrors(t *testing.T) {
	s := NewSession(1, testParams(), SessionOptions{})

	_, err := s.Apply("nope", Input{Text: "x"})
	assert.ErrorIs(t, err, ErrUnknownField)

	before := s.Values()
	values, err := s.Apply("riskProfile", Input{Text: "Medium"})
	assert.True(t, IsValidationError(err))
	assert.Empty(t, cmp.Diff(before, values))
	assert.Contains(t, s.Errors(), "riskProfile")

	_, err = s.Apply("broken", Input{Text: "x"})
	assert.True(t, IsConfigurationError(err))

	s.Close()
	_, err = s.Apply("minBalance", Input{Text: "1"})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_ValidateNumbersAndDates(t *testing.T) {
	params := []models.ParameterDefinition{
		{Name: "amount", Type: models.ParameterTypeNumeric},
		{Name: "count", Type: models.ParameterTypeInteger},
		{Name: "since", Type: models.ParameterTypeDate},
	}
	s := NewSession(1, params, SessionOptions{})
	defer s.Close()

	_, err := s.Apply("amount", Input{Text: "-"})
	require.NoError(t, err, "partial numbers are stored as typed")
	_, err = s.Apply("count", Input{Text: "2.5"})
	require.NoError(t, err)

	errs := s.Validate()
	assert.Contains(t, errs, "amount")
	assert.Contains(t, errs, "count")
	assert.NotContains(t, errs, "since")

	_, _ = s.Apply("amount", Input{Text: "-12.5"})
	_, _ = s.Apply("count", Input{Text: "3"})
	_, _ = s.Apply("since", Input{Text: "2024-01-31"})
	assert.Nil(t, s.Validate())
}

func TestSession_LookupWritesIDs(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := &manualClock{}
	client := &recordingClient{clock: clock, results: []SearchResult{{ID: "1", Label: "John"}, {ID: "2", Label: "Joan"}}}
	s := NewSession(1, testParams(), SessionOptions{Client: client, Clock: clock})
	defer s.Close()

	_, err := s.Apply("searchTerm", Input{Text: "jo"})
	require.NoError(t, err)
	assert.NotContains(t, s.Values(), "searchTerm_ids")

	clock.Advance(DefaultDebounce)

	values := s.Values()
	assert.Equal(t, "jo", values["searchTerm_param"])
	assert.Equal(t, "('1', '2')", values["searchTerm_ids"])
	assert.Equal(t, client.results, s.Results("searchTerm"))
}

func TestSession_LookupFailureLeavesValuesUntouched(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock, err: errors.New("boom")}
	var logs bytes.Buffer
	s := NewSession(1, testParams(), SessionOptions{Client: client, Clock: clock, Logger: log.New(&logs, "", 0)})
	defer s.Close()

	_, err := s.Apply("searchTerm", Input{Text: "jo"})
	require.NoError(t, err)
	before := s.Values()

	clock.Advance(DefaultDebounce)

	require.Len(t, client.Calls(), 1)
	assert.Empty(t, cmp.Diff(before, s.Values()))
	assert.Contains(t, logs.String(), "boom")
}

func TestSession_CloseDropsPendingLookup(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock, results: []SearchResult{{ID: "1"}}}
	s := NewSession(1, testParams(), SessionOptions{Client: client, Clock: clock})

	_, err := s.Apply("searchTerm", Input{Text: "jo"})
	require.NoError(t, err)
	s.Close()
	clock.Advance(time.Second)

	assert.Empty(t, client.Calls())
	assert.NotContains(t, s.Values(), "searchTerm_ids")
	assert.True(t, s.Closed())
}

func TestSession_CloseDropsInFlightResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := &manualClock{}
	client := &blockingClient{started: make(chan struct{})}
	s := NewSession(1, testParams(), SessionOptions{Client: client, Clock: clock})

	_, err := s.Apply("searchTerm", Input{Text: "jo"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		clock.Advance(DefaultDebounce)
	}()

	<-client.started
	s.Close()
	<-done

	assert.NotContains(t, s.Values(), "searchTerm_ids")
	assert.Empty(t, s.Results("searchTerm"))
}

func TestSession_AutocompleteWithoutOptionsTakesFreeText(t *testing.T) {
	params := []models.ParameterDefinition{{Name: "city", Type: models.ParameterTypeAutocomplete}}
	s := NewSession(1, params, SessionOptions{})
	defer s.Close()

	values, err := s.Apply("city", Input{Text: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "Paris", values["city"])
	assert.Nil(t, s.Validate())
}

func TestSession_SearchTextChangeDropsStaleIDs(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock, results: []SearchResult{{ID: "7", Label: "John"}}}
	s := NewSession(1, testParams(), SessionOptions{Client: client, Clock: clock})
	defer s.Close()
	_, err := s.Apply("riskProfile", Input{Text: "High"})
	require.NoError(t, err)

	_, err = s.Apply("searchTerm", Input{Text: "john"})
	require.NoError(t, err)
	clock.Advance(DefaultDebounce + 100*time.Millisecond)
	require.Equal(t, "('7')", s.Values()["searchTerm_ids"])
	assert.Nil(t, s.Validate())

	values, err := s.Apply("searchTerm", Input{Text: "mary"})
	require.NoError(t, err)
	assert.Equal(t, "mary", values["searchTerm_param"])
	assert.NotContains(t, values, "searchTerm_ids", "ids computed for the old text are dropped")
	assert.Empty(t, s.Results("searchTerm"))

	errs := s.Validate()
	require.NotNil(t, errs, "a pending lookup blocks submission")
	assert.Contains(t, errs, "searchTerm")

	clock.Advance(DefaultDebounce)
	assert.Equal(t, "('7')", s.Values()["searchTerm_ids"])
	assert.Nil(t, s.Validate())

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "mary", calls[1].text)
}

func TestSession_SameSearchTextKeepsIDs(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock, results: []SearchResult{{ID: "1"}}}
	s := NewSession(1, testParams(), SessionOptions{Client: client, Clock: clock})
	defer s.Close()

	_, err := s.Apply("searchTerm", Input{Text: "jo"})
	require.NoError(t, err)
	clock.Advance(DefaultDebounce)

	values, err := s.Apply("searchTerm", Input{Text: " jo "})
	require.NoError(t, err)
	assert.Equal(t, "('1')", values["searchTerm_ids"])
}
