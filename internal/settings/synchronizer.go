package settings

import (
	"context"
	"fmt"
)

// SerializedError is the wire form of a per-target write failure. It
// crosses the transport boundary and must round-trip to an equivalent
// error object.
type SerializedError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Err deserializes into a normalized error object.
func (e *SerializedError) Err() error {
	if e == nil {
		return nil
	}
	if e.Name != "" {
		return fmt.Errorf("%s: %s", e.Name, e.Message)
	}
	return fmt.Errorf("%s", e.Message)
}

// WriteResult is the outcome of one write target. A nil Error is a
// silent success.
type WriteResult struct {
	Error *SerializedError `json:"error,omitempty"`
}

// Transport is the settings storage the synchronizer writes through.
type Transport interface {
	// GetFullConfig reads the current configuration snapshot.
	GetFullConfig(ctx context.Context) (*OptionsFull, error)

	// ApplyWrites applies targets in order and returns one result per
	// target, same order. The call itself fails only on
	// transport-level errors; per-target failures ride in the results.
	ApplyWrites(ctx context.Context, targets []WriteTarget) ([]WriteResult, error)
}

// Synchronizer applies batches of write targets and collects the
// per-target failures.
type Synchronizer struct {
	transport Transport
}

func NewSynchronizer(transport Transport) *Synchronizer {
	return &Synchronizer{transport: transport}
}

// Apply submits targets in one batch. The returned slice holds one
// normalized error per failing target, in target order; successes
// contribute nothing. The second return value is a transport-level
// failure of the batch call itself.
func (s *Synchronizer) Apply(ctx context.Context, targets []WriteTarget) ([]error, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	results, err := s.transport.ApplyWrites(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to apply settings writes: %w", err)
	}
	if len(results) != len(targets) {
		return nil, fmt.Errorf("settings transport returned %d results for %d targets", len(results), len(targets))
	}

	var errs []error
	for _, result := range results {
		if result.Error != nil {
			errs = append(errs, result.Error.Err())
		}
	}
	return errs, nil
}

// AddDictionary registers an imported dictionary on every profile.
func (s *Synchronizer) AddDictionary(ctx context.Context, sequenced bool, title string) ([]error, error) {
	full, err := s.transport.GetFullConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return s.Apply(ctx, AddDictionaryTargets(full, sequenced, title))
}

// ClearDictionaries removes dictionary configuration from every profile.
func (s *Synchronizer) ClearDictionaries(ctx context.Context) ([]error, error) {
	full, err := s.transport.GetFullConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return s.Apply(ctx, ClearDictionaryTargets(full))
}
