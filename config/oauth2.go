// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the Google Drive backup client configuration shared by
// the auth initializer and the drivebackup-setup command.
//
// Backups are disabled until an operator provisions an OAuth client:
//
//  1. Open the Google Cloud Console (https://console.cloud.google.com).
//  2. Create a project or select an existing one.
//  3. Under "APIs & Services" > "Library", enable the Google Drive API.
//  4. Under "APIs & Services" > "Credentials", create an OAuth 2.0 Client ID
//     of type "Web application".
//  5. Add the authorized JavaScript origins, for example
//     http://localhost:8080 for development and the production domain.
//  6. Copy the generated client ID into Default.ClientID, a YAML file passed
//     to Load, or the DRIVEBACKUP_CLIENT_ID environment variable.
//
// Without a valid client ID the application keeps working in local-only mode.
package config // import "drivebackup.io/config"

import (
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"upspin.io/errors"
)

// DriveDiscoveryDoc describes the Drive v3 API surface.
const DriveDiscoveryDoc = "https://www.googleapis.com/discovery/v1/apis/drive/v3/rest"

// AppConfig holds the OAuth client identity and the Drive API surface
// requested at authorization time.
type AppConfig struct {
	// ClientID is the OAuth client identifier issued by Google.
	ClientID string `yaml:"clientId"`
	// Scopes are the permission scope URIs, in request order.
	Scopes []string `yaml:"scopes"`
	// DiscoveryDocs are URLs describing the remote API surface.
	DiscoveryDocs []string `yaml:"discoveryDocs"`
}

// Default is the process-wide backup configuration. It must not be modified;
// use Clone to derive a variant.
var Default = &AppConfig{
	ClientID: "98755823898-3pshprdpp54nhecr0h7q00sj92kmv2o9.apps.googleusercontent.com",
	Scopes: []string{
		drive.DriveFileScope,
		drive.DriveAppdataScope,
	},
	DiscoveryDocs: []string{DriveDiscoveryDoc},
}

// ScopeString returns the scopes joined by single spaces, in order.
func (c *AppConfig) ScopeString() string {
	return strings.Join(c.Scopes, " ")
}

// Clone returns a deep copy of c.
func (c *AppConfig) Clone() *AppConfig {
	return &AppConfig{
		ClientID:      c.ClientID,
		Scopes:        append([]string(nil), c.Scopes...),
		DiscoveryDocs: append([]string(nil), c.DiscoveryDocs...),
	}
}

// Validate reports whether c is usable for initialization.
func (c *AppConfig) Validate() error {
	const op = "config.Validate"
	if c.ClientID == "" {
		return errors.E(op, errors.Invalid, errors.Str("missing clientId"))
	}
	if len(c.Scopes) == 0 {
		return errors.E(op, errors.Invalid, errors.Str("no scopes configured"))
	}
	for _, s := range c.Scopes {
		if s == "" {
			return errors.E(op, errors.Invalid, errors.Str("empty scope"))
		}
		if strings.ContainsAny(s, " \t\r\n") {
			return errors.E(op, errors.Invalid, errors.Errorf("scope %q contains whitespace", s))
		}
	}
	for _, d := range c.DiscoveryDocs {
		u, err := url.Parse(d)
		if err != nil {
			return errors.E(op, errors.Invalid, errors.Errorf("invalid discovery doc %q: %v", d, err))
		}
		if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return errors.E(op, errors.Invalid, errors.Errorf("discovery doc %q is not an absolute http(s) URL", d))
		}
	}
	return nil
}

// OAuth2 returns the OAuth2 configuration for c on the Google endpoint.
// Web clients carry no secret, so ClientSecret is left empty.
func (c *AppConfig) OAuth2(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.ClientID,
		Endpoint:    google.Endpoint,
		RedirectURL: redirectURL,
		Scopes:      append([]string(nil), c.Scopes...),
	}
}
