// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"sync"

	"drivebackup.io/config"
)

// State is the outcome of the most recent initialization.
type State int

const (
	// Uninitialized means no run has completed.
	Uninitialized State = iota
	// Initialized means the last run succeeded.
	Initialized
	// Failed means the last run returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Initializer binds an SDK handle to a configuration and records the state
// reached by its last Run. Concurrent or repeated runs are not deduplicated.
type Initializer struct {
	SDK    SDK
	Config *config.AppConfig

	mu    sync.Mutex
	state State
	err   error
}

// Run calls Initialize and records the terminal state.
func (i *Initializer) Run(ctx context.Context) error {
	err := Initialize(ctx, i.SDK, i.Config)
	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		i.state, i.err = Failed, err
	} else {
		i.state, i.err = Initialized, nil
	}
	return err
}

// State returns the state reached by the last Run and its error, if any.
func (i *Initializer) State() (State, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state, i.err
}
