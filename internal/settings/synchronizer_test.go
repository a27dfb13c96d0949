package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport returns canned results and records submitted targets.
type fakeTransport struct {
	full    *OptionsFull
	results []WriteResult
	err     error

	applied [][]WriteTarget
}

func (f *fakeTransport) GetFullConfig(ctx context.Context) (*OptionsFull, error) {
	if f.full == nil {
		return nil, errors.New("no config")
	}
	return f.full, nil
}

func (f *fakeTransport) ApplyWrites(ctx context.Context, targets []WriteTarget) ([]WriteResult, error) {
	f.applied = append(f.applied, targets)
	if f.err != nil {
		return nil, f.err
	}
	if f.results != nil {
		return f.results, nil
	}
	return make([]WriteResult, len(targets)), nil
}

func TestApply_CollectsFailingTargetsInOrder(t *testing.T) {
	transport := &fakeTransport{
		results: []WriteResult{
			{},
			{Error: &SerializedError{Name: "SettingsWriteError", Message: "first failure"}},
			{},
			{Error: &SerializedError{Message: "second failure"}},
		},
	}
	sync := NewSynchronizer(transport)

	targets := make([]WriteTarget, 4)
	errs, err := sync.Apply(context.Background(), targets)
	require.NoError(t, err)

	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], "SettingsWriteError: first failure")
	assert.EqualError(t, errs[1], "second failure")
}

func TestApply_EmptyBatchSkipsTransport(t *testing.T) {
	transport := &fakeTransport{}
	sync := NewSynchronizer(transport)

	errs, err := sync.Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Empty(t, transport.applied)
}

func TestApply_TransportFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	sync := NewSynchronizer(transport)

	_, err := sync.Apply(context.Background(), make([]WriteTarget, 1))
	assert.ErrorContains(t, err, "connection refused")
}

func TestApply_ResultCountMismatch(t *testing.T) {
	transport := &fakeTransport{results: make([]WriteResult, 1)}
	sync := NewSynchronizer(transport)

	_, err := sync.Apply(context.Background(), make([]WriteTarget, 3))
	assert.ErrorContains(t, err, "1 results for 3 targets")
}

func TestAddDictionary_SubmitsBuilderTargets(t *testing.T) {
	transport := &fakeTransport{full: snapshotWithProfiles("", "")}
	sync := NewSynchronizer(transport)

	errs, err := sync.AddDictionary(context.Background(), true, "JMdict")
	require.NoError(t, err)
	assert.Empty(t, errs)

	require.Len(t, transport.applied, 1)
	assert.Len(t, transport.applied[0], 4)
}

func TestClearDictionaries_SubmitsBuilderTargets(t *testing.T) {
	transport := &fakeTransport{full: snapshotWithProfiles("A", "B", "C")}
	sync := NewSynchronizer(transport)

	errs, err := sync.ClearDictionaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, errs)

	require.Len(t, transport.applied, 1)
	assert.Len(t, transport.applied[0], 6)
}

func TestSerializedError_RoundTrip(t *testing.T) {
	original := WriteResult{Error: &SerializedError{Name: "QuotaExceededError", Message: "quota exceeded"}}

	// Errors cross a process boundary in serialized form
	raw, err := json.Marshal(original)
	require.NoError(t, err)
	var decoded WriteResult
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, original.Error.Err().Error(), decoded.Error.Err().Error())
}
