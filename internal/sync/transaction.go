// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
)

// TxState is the state of an optimistic transaction.
type TxState string

// Transaction states.
const (
	TxPending    TxState = "pending"
	TxOptimistic TxState = "optimistic"
	TxCommitting TxState = "committing"
	TxSynced     TxState = "synced"
	TxRolledBack TxState = "rolled_back"
	TxFailed     TxState = "failed"
)

// ErrNoRemote is returned by Run when a transaction has no Remote step.
var ErrNoRemote = errors.New("transaction has no remote step")

// Transaction is one optimistic local change backed by remote work.
//
//	Apply   local change, visible immediately
//	Remote  remote work
//	Commit  local confirmation, after Remote succeeded
//	Revert  undo of Apply, after Remote or Commit failed
//
// Apply, Commit and Revert are optional. A failing Apply aborts the
// transaction before anything remote happens (state failed).
type Transaction struct {
	Operation string
	Apply     func() error
	Remote    func(ctx context.Context) error
	Commit    func() error
	Revert    func(cause error)

	state TxState
}

// State returns the current state.
func (tx *Transaction) State() TxState {
	if tx.state == "" {
		return TxPending
	}
	return tx.state
}

// Run applies the local change and completes the transaction.
func (tx *Transaction) Run(ctx context.Context) error {
	if err := tx.Begin(ctx); err != nil {
		return err
	}
	return tx.Complete(ctx)
}

// Begin applies the local change. Callers that complete the transaction in
// the background call Begin synchronously and Complete later.
func (tx *Transaction) Begin(ctx context.Context) error {
	ctx = logging.ContextWithOperation(ctx, tx.Operation)
	if tx.Remote == nil {
		return ErrNoRemote
	}
	if tx.Apply != nil {
		if err := tx.Apply(); err != nil {
			tx.transition(ctx, TxFailed)
			metrics.RecordTransaction(tx.Operation, string(TxFailed))
			return err
		}
	}
	tx.transition(ctx, TxOptimistic)
	return nil
}

// Complete runs the remote step and then commits or reverts.
func (tx *Transaction) Complete(ctx context.Context) error {
	ctx = logging.ContextWithOperation(ctx, tx.Operation)
	tx.transition(ctx, TxCommitting)

	err := tx.Remote(ctx)
	if err == nil && tx.Commit != nil {
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit %s: %w", tx.Operation, commitErr)
		}
	}

	if err != nil {
		if tx.Revert != nil {
			tx.Revert(err)
		}
		tx.transition(ctx, TxRolledBack)
		logging.Ctx(ctx).Warn().Err(err).Msg("Transaction rolled back")
		metrics.RecordTransaction(tx.Operation, string(TxRolledBack))
		return err
	}

	tx.transition(ctx, TxSynced)
	metrics.RecordTransaction(tx.Operation, string(TxSynced))
	return nil
}

func (tx *Transaction) transition(ctx context.Context, to TxState) {
	from := tx.State()
	tx.state = to
	logging.Ctx(ctx).Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Transaction state change")
}
