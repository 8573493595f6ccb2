package state

import "context"

// Optimistic is a local mutation mirrored to the backend. Apply and
// Revert run under the store lock, Remote runs without it. Revert
// undoes Apply when Remote fails.
type Optimistic struct {
	Action string
	Apply  func()
	Remote func(ctx context.Context) error
	Revert func()
}

// Do applies op, calls the backend and reverts on failure. A failure
// is logged and published as a toast. Nothing is retried.
func (s *Store) Do(ctx context.Context, op Optimistic) error {
	s.mu.Lock()
	op.Apply()
	s.mu.Unlock()
	s.changed()

	err := op.Remote(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("action", op.Action).
			Msg("remote call failed, reverting")

		s.mu.Lock()
		op.Revert()
		s.mu.Unlock()
		s.changed()
		s.toast(op.Action, err)
		return err
	}

	s.logger.Debug().
		Str("action", op.Action).
		Msg("remote call succeeded")
	s.changed()
	return nil
}
