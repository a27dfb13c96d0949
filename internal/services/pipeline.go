package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/jisho/internal/entities"
	"github.com/mrlokans/jisho/internal/events"
)

// importOne runs the pipeline for a single archive: open a fresh
// store handle, delegate parsing to the importer, notify listeners,
// derive settings updates from the result and collect every failure
// for display. The handle is closed on every exit path.
//
// The first return value is the list of errors to display for this
// file. A non-nil fatal means plumbing is unreachable and the batch
// should stop; per-file import failures are not fatal.
func (o *Orchestrator) importOne(ctx context.Context, file InputFile) (displayErrs []error, fatal error) {
	session := o.startSession(ctx, file.Name)

	handle, err := o.store.Open(ctx)
	if err != nil {
		o.failSession(ctx, session, err)
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}
	defer handle.Close()

	result, err := o.importer.ImportDictionary(ctx, handle, file.Content, o.details, o.onProgress)
	if err != nil {
		o.failSession(ctx, session, err)
		return []error{fmt.Errorf("%s: %w", file.Name, err)}, nil
	}

	o.notify(events.KindDictionary, events.ReasonImport)
	o.completeSession(ctx, session, result.Title, result.TermCount)

	errs := append([]error(nil), result.Errors...)

	// Partial success still records whatever settings make sense.
	settingsErrs, err := o.settings.AddDictionary(ctx, result.Sequenced, result.Title)
	if err != nil {
		return errs, err
	}
	errs = append(errs, settingsErrs...)

	if len(errs) > 0 {
		errs = append(errs, summaryError(len(errs)))
	}
	return errs, nil
}

// onProgress is the per-file progress sink: it recomputes the visible
// percentage and triggers a stats refresh so counts grow during long
// imports. May be invoked synchronously at any frequency.
func (o *Orchestrator) onProgress(total, current int) {
	percent := 100.0
	if total > 0 {
		percent = float64(current) / float64(total) * 100
	}
	o.setProgressPercent(percent)
	o.refreshStats()
}

func summaryError(count int) error {
	if count == 1 {
		return errors.New("1 error reported.")
	}
	return fmt.Errorf("%d errors reported.", count)
}

func (o *Orchestrator) startSession(ctx context.Context, filename string) *entities.ImportSession {
	if o.sessions == nil {
		return nil
	}
	session, err := o.sessions.StartImportSession(ctx, filename)
	if err != nil {
		// Audit trail only; the import itself proceeds.
		return nil
	}
	return session
}

func (o *Orchestrator) completeSession(ctx context.Context, session *entities.ImportSession, dictionary string, termCount int) {
	if session == nil {
		return
	}
	_ = o.sessions.CompleteImportSession(ctx, session, dictionary, termCount)
}

func (o *Orchestrator) failSession(ctx context.Context, session *entities.ImportSession, importErr error) {
	if session == nil {
		return
	}
	_ = o.sessions.FailImportSession(ctx, session, importErr)
}
