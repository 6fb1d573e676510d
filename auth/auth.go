// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auth initializes the authentication module of a Google API SDK
// with the backup client configuration.
//
// The SDK handle is passed in explicitly. A nil handle means the SDK was never
// loaded, in which case the caller is expected to fall back to local-only mode.
package auth // import "drivebackup.io/auth"

import (
	"context"

	"drivebackup.io/config"

	"upspin.io/errors"
	"upspin.io/log"
)

// ModuleName is the SDK sub-module that provides authentication.
const ModuleName = "auth2"

// ErrSDKNotLoaded is returned by Initialize when no SDK handle is available.
var ErrSDKNotLoaded = errors.Str("Google API SDK is not loaded")

// SDK is a handle to an external Google API library.
type SDK interface {
	// Load loads the named sub-module and calls onLoad exactly once with
	// the result. A nil module means the name is unknown to the SDK.
	// onLoad may run on another goroutine.
	Load(module string, onLoad func(AuthModule))
}

// AuthModule is the SDK's authentication sub-module.
type AuthModule interface {
	Init(ctx context.Context, p InitParams) error
}

// InitParams are the arguments of AuthModule.Init.
type InitParams struct {
	// ClientID is the OAuth client identifier, passed through unchanged.
	ClientID string
	// Scope is the space-delimited list of requested scopes.
	Scope string
}

// loader is implemented by SDK handles that can report whether the
// underlying library is present, such as a nil *google.SDK.
type loader interface {
	Loaded() bool
}

// logf is replaced in tests.
var logf = log.Info.Printf

// Initialize loads the authentication module of sdk and initializes it with
// cfg. Errors returned by the module's Init are returned as is. Every call
// performs the full load and init sequence again.
func Initialize(ctx context.Context, sdk SDK, cfg *config.AppConfig) error {
	const op = "auth.Initialize"
	if sdk == nil {
		return ErrSDKNotLoaded
	}
	if l, ok := sdk.(loader); ok && !l.Loaded() {
		return ErrSDKNotLoaded
	}
	if cfg == nil {
		return errors.E(op, errors.Invalid, errors.Str("missing configuration"))
	}
	mod, err := load(ctx, sdk)
	if err != nil {
		return errors.E(op, err)
	}
	if mod == nil {
		return errors.E(op, errors.NotExist, errors.Errorf("SDK has no %q module", ModuleName))
	}
	err = mod.Init(ctx, InitParams{
		ClientID: cfg.ClientID,
		Scope:    cfg.ScopeString(),
	})
	if err != nil {
		return err
	}
	logf("auth: Google Drive API initialized")
	return nil
}

// load waits for the SDK's load callback or for ctx to be done.
func load(ctx context.Context, sdk SDK) (AuthModule, error) {
	// Buffered so a late callback never blocks after ctx is done.
	loaded := make(chan AuthModule, 1)
	sdk.Load(ModuleName, func(m AuthModule) {
		loaded <- m
	})
	select {
	case m := <-loaded:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
