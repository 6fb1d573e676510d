// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The drivebackup-setup command checks that the Google Drive backup client is
// configured and walks the operator through authorizing a Drive account.
// Run drivebackup-setup -help for more information.
package main // import "drivebackup.io/cmd/drivebackup-setup"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"upspin.io/subcmd"

	"drivebackup.io/auth"
	"drivebackup.io/auth/google"
	"drivebackup.io/config"
	"drivebackup.io/drive"
)

const help = `
drivebackup-setup initializes the Google Drive backup client with the
configured OAuth client ID and scopes. Without a valid configuration the
application keeps working in local-only mode.

The configuration is read from the -config YAML file if given, otherwise
the built-in defaults are used. DRIVEBACKUP_CLIENT_ID and DRIVEBACKUP_SCOPES,
from the environment or a .env file in the current directory, override it.

Without -code, drivebackup-setup prints the URL at which to authorize the
application. Run it again with the code obtained there to confirm that the
account can be reached. Nothing is written to disk.
`

type state struct{ *subcmd.State }

func main() {
	const name = "drivebackup-setup"

	log.SetFlags(0)
	log.SetPrefix("drivebackup-setup: ")

	cfgFile := flag.String("config", "", "YAML configuration `file`")
	code := flag.String("code", "", "authorization `code` obtained from the consent page")
	redirect := flag.String("redirect", google.OOBRedirectURL, "OAuth redirect `URL` registered for the client")

	s := &state{State: subcmd.NewState(name)}
	s.ParseFlags(flag.CommandLine, os.Args[1:], help, "drivebackup-setup [-config=<file>] [-code=<code>]")

	// A missing .env is not an error.
	_ = godotenv.Load()

	cfg := s.loadConfig(*cfgFile)
	ctx := context.Background()
	sdk := google.New(google.WithRedirectURL(*redirect))
	if err := auth.Initialize(ctx, sdk, cfg); err != nil {
		s.Exitf(localOnly, err)
	}
	a := sdk.AuthInstance()

	if *code == "" {
		authURL, err := a.AuthCodeURL("state-token")
		if err != nil {
			s.Exit(err)
		}
		fmt.Printf("Open this URL in your browser to obtain an authorization code:\n\t%s\n", authURL)
		fmt.Fprintf(os.Stderr, "Then run 'drivebackup-setup -code=<code>'.\n")
		s.ExitNow()
	}

	acct := s.checkAccount(ctx, a, *code)
	fmt.Printf("Authorized as %s <%s>; %d of %d bytes used.\n", acct.DisplayName, acct.Email, acct.Usage, acct.Limit)
	s.ExitNow()
}

// localOnly is the message for every failure that leaves backups disabled.
const localOnly = "Drive backup unavailable, continuing in local-only mode: %v"

func (s *state) loadConfig(file string) *config.AppConfig {
	cfg, err := loadConfig(file)
	if err != nil {
		s.Exitf(localOnly, err)
	}
	return cfg
}

// loadConfig reads file, or Default when file is empty, and applies the
// environment overrides.
func loadConfig(file string) (*config.AppConfig, error) {
	cfg := config.Default
	if file != "" {
		var err error
		cfg, err = config.Load(file)
		if err != nil {
			return nil, err
		}
	}
	cfg = config.FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkAccount exchanges code for a token and reports the Drive account it
// grants access to.
func (s *state) checkAccount(ctx context.Context, a *google.Auth, code string) *drive.Account {
	tok, err := a.Exchange(ctx, code)
	if err != nil {
		s.Exitf("unable to retrieve token from web: %v", err)
	}
	svc, err := a.DriveService(ctx, tok)
	if err != nil {
		s.Exit(err)
	}
	acct, err := drive.Check(ctx, svc)
	if err != nil {
		s.Exitf("unable to reach Google Drive: %v", err)
	}
	return acct
}
