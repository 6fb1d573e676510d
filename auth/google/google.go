// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package google implements auth.SDK on top of golang.org/x/oauth2 and the
// Google Drive API client.
package google // import "drivebackup.io/auth/google"

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"drivebackup.io/auth"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"upspin.io/errors"
)

// clientIDSuffix is carried by every Google OAuth client ID.
const clientIDSuffix = ".apps.googleusercontent.com"

// OOBRedirectURL is the out-of-band redirect used when none is configured.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

var (
	_ auth.SDK        = (*SDK)(nil)
	_ auth.AuthModule = (*Auth)(nil)
)

// Option configures an SDK.
type Option func(*SDK)

// WithRedirectURL sets the OAuth redirect URL.
func WithRedirectURL(url string) Option {
	return func(s *SDK) { s.redirectURL = url }
}

// WithHTTPClient sets the HTTP client used for token exchange and API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SDK) { s.httpClient = c }
}

// WithEndpoint overrides the Google OAuth2 endpoint.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(s *SDK) { s.endpoint = e }
}

// WithAPIEndpoint overrides the Drive API base path.
func WithAPIEndpoint(url string) Option {
	return func(s *SDK) { s.apiEndpoint = url }
}

// SDK is a handle to the Google API client library.
type SDK struct {
	redirectURL string
	httpClient  *http.Client
	endpoint    oauth2.Endpoint
	apiEndpoint string

	mu       sync.Mutex
	instance *Auth
}

// New returns an SDK handle.
func New(opts ...Option) *SDK {
	s := &SDK{
		redirectURL: OOBRedirectURL,
		endpoint:    google.Endpoint,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Loaded reports whether s is a usable handle. It is false for a nil *SDK.
func (s *SDK) Loaded() bool {
	return s != nil
}

// Load implements auth.SDK. The callback runs on its own goroutine.
// A nil *SDK loads nothing.
func (s *SDK) Load(module string, onLoad func(auth.AuthModule)) {
	if s == nil || module != auth.ModuleName {
		go onLoad(nil)
		return
	}
	a := &Auth{sdk: s}
	s.mu.Lock()
	s.instance = a
	s.mu.Unlock()
	go onLoad(a)
}

// AuthInstance returns the auth2 module from the most recent Load,
// or nil if it was never loaded.
func (s *SDK) AuthInstance() *Auth {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance
}

// Auth is the auth2 module. It holds the OAuth2 configuration once Init
// has succeeded.
type Auth struct {
	sdk *SDK

	mu   sync.Mutex
	conf *oauth2.Config
}

// Init implements auth.AuthModule.
func (a *Auth) Init(ctx context.Context, p auth.InitParams) error {
	const op = "auth/google.Init"
	if p.ClientID == "" {
		return errors.E(op, errors.Invalid, errors.Str("missing client_id"))
	}
	if !strings.HasSuffix(p.ClientID, clientIDSuffix) || len(p.ClientID) == len(clientIDSuffix) {
		return errors.E(op, errors.Invalid, errors.Errorf("invalid client_id %q", p.ClientID))
	}
	scopes := strings.Fields(p.Scope)
	if len(scopes) == 0 {
		return errors.E(op, errors.Invalid, errors.Str("missing scope"))
	}
	if err := ctx.Err(); err != nil {
		return errors.E(op, err)
	}
	conf := &oauth2.Config{
		ClientID:    p.ClientID,
		Endpoint:    a.sdk.endpoint,
		RedirectURL: a.sdk.redirectURL,
		Scopes:      scopes,
	}
	a.mu.Lock()
	a.conf = conf
	a.mu.Unlock()
	return nil
}

// Config returns the OAuth2 configuration, or nil before Init succeeds.
func (a *Auth) Config() *oauth2.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conf
}

func (a *Auth) config(op string) (*oauth2.Config, error) {
	c := a.Config()
	if c == nil {
		return nil, errors.E(op, errors.Invalid, errors.Str("auth module not initialized"))
	}
	return c, nil
}

// AuthCodeURL returns the consent page URL for the configured scopes.
func (a *Auth) AuthCodeURL(state string) (string, error) {
	c, err := a.config("auth/google.AuthCodeURL")
	if err != nil {
		return "", err
	}
	return c.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange converts an authorization code into a token.
func (a *Auth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	const op = "auth/google.Exchange"
	c, err := a.config(op)
	if err != nil {
		return nil, err
	}
	tok, err := c.Exchange(a.withClient(ctx), code)
	if err != nil {
		return nil, errors.E(op, errors.Permission, err)
	}
	return tok, nil
}

// DriveService returns a Drive v3 service authorized by tok.
func (a *Auth) DriveService(ctx context.Context, tok *oauth2.Token) (*drive.Service, error) {
	const op = "auth/google.DriveService"
	c, err := a.config(op)
	if err != nil {
		return nil, err
	}
	opts := []option.ClientOption{option.WithHTTPClient(c.Client(a.withClient(ctx), tok))}
	if a.sdk.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(a.sdk.apiEndpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	return svc, nil
}

// withClient attaches the SDK's HTTP client, if any, for use by oauth2.
func (a *Auth) withClient(ctx context.Context) context.Context {
	if a.sdk.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.sdk.httpClient)
}
