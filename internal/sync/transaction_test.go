// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTransaction_Run(t *testing.T) {
	t.Parallel()

	errRemote := errors.New("remote down")
	errApply := errors.New("apply refused")
	errCommit := errors.New("commit refused")

	tests := []struct {
		name       string
		applyErr   error
		remoteErr  error
		commitErr  error
		wantErr    error
		wantState  TxState
		wantSteps  string
		wantRevert bool
	}{
		{"success", nil, nil, nil, nil, TxSynced, "apply,remote,commit", false},
		{"remote failure reverts", nil, errRemote, nil, errRemote, TxRolledBack, "apply,remote,revert", true},
		{"apply failure skips remote", errApply, nil, nil, errApply, TxFailed, "apply", false},
		{"commit failure reverts", nil, nil, errCommit, errCommit, TxRolledBack, "apply,remote,commit,revert", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var steps []string
			var revertCause error
			tx := &Transaction{
				Operation: "test_op",
				Apply: func() error {
					steps = append(steps, "apply")
					return tt.applyErr
				},
				Remote: func(context.Context) error {
					steps = append(steps, "remote")
					return tt.remoteErr
				},
				Commit: func() error {
					steps = append(steps, "commit")
					return tt.commitErr
				},
				Revert: func(cause error) {
					steps = append(steps, "revert")
					revertCause = cause
				},
			}

			err := tx.Run(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			checkStringEqual(t, "state", string(tx.State()), string(tt.wantState))
			checkStringEqual(t, "steps", strings.Join(steps, ","), tt.wantSteps)
			if tt.wantRevert && !errors.Is(revertCause, tt.wantErr) {
				t.Errorf("revert cause = %v, want %v", revertCause, tt.wantErr)
			}
		})
	}
}

func TestTransaction_NoRemote(t *testing.T) {
	t.Parallel()

	applied := false
	tx := &Transaction{Operation: "test_op", Apply: func() error { applied = true; return nil }}
	if err := tx.Run(context.Background()); !errors.Is(err, ErrNoRemote) {
		t.Fatalf("Run() error = %v, want ErrNoRemote", err)
	}
	if applied {
		t.Error("Apply ran without a remote step")
	}
	checkStringEqual(t, "state", string(tx.State()), string(TxPending))
}

func TestTransaction_BeginThenComplete(t *testing.T) {
	t.Parallel()

	tx := &Transaction{Operation: "test_op", Remote: func(context.Context) error { return nil }}
	checkNoError(t, "Begin", tx.Begin(context.Background()))
	checkStringEqual(t, "state after Begin", string(tx.State()), string(TxOptimistic))
	checkNoError(t, "Complete", tx.Complete(context.Background()))
	checkStringEqual(t, "state after Complete", string(tx.State()), string(TxSynced))
}
