package checklist

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/model"
	"github.com/nhle/checklist-sync/internal/retry"
)

// SyncResult reports the outcome of a pending-change flush. Errors
// holds one entry per failed attempt; SyncedItems is the number of
// items in the record the server confirmed.
type SyncResult struct {
	SyncedItems int
	Errors      []error
}

// Status describes whether a local mutation is still awaiting
// confirmation by the remote backend.
type Status struct {
	Pending bool
}

// SyncStatus reports the pending-sync flag.
func (s *Store) SyncStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Pending: s.pending}
}

// SyncPendingChanges pushes the optimistically mutated record to the
// remote backend. It is a no-op unless the pending flag is set and the
// mode is api. The full-record PUT is retried with exponential backoff
// (base delay doubling each attempt) up to the configured attempt
// count; the pending flag clears on the first success. When every
// attempt fails, the returned result carries one error per attempt and
// the classified last error is returned alongside it.
func (s *Store) SyncPendingChanges(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	s.mu.Lock()
	pending := s.pending && s.mode == model.ModeAPI
	record := s.cached
	s.mu.Unlock()

	if !pending || record == nil {
		return result, nil
	}

	err := retry.Do(ctx,
		retry.Config{Attempts: s.retries, BaseDelay: s.delay},
		func(ctx context.Context) error {
			putErr := s.client.PutChecklist(ctx, record)
			if putErr != nil && !isTransient(putErr) {
				// Typed API outcomes will not improve on retry.
				return retry.Stop(putErr)
			}
			return putErr
		},
		func(attempt int, attemptErr error) {
			result.Errors = append(result.Errors, attemptErr)
			s.logger.Warn("sync attempt failed",
				zap.String("slug", s.slg),
				zap.Int("attempt", attempt),
				zap.Error(attemptErr),
			)
		},
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Errors = append(result.Errors, err)
		}
		return result, classify("sync", err)
	}

	s.setPending(false)
	result.SyncedItems = len(record.Items)
	s.logger.Info("pending changes synced",
		zap.String("slug", s.slg),
		zap.Int("items", result.SyncedItems),
	)
	return result, nil
}
