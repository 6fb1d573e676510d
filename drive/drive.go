// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package drive confirms that an authorized client can reach the Google
// Drive account that will hold backups.
package drive // import "drivebackup.io/drive"

import (
	"context"
	"net/http"

	"upspin.io/errors"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// aboutFields limits the About response to what Account reports.
const aboutFields = "user(displayName,emailAddress),storageQuota(limit,usage)"

// Account describes the Drive account behind an authorized client.
type Account struct {
	DisplayName string
	Email       string
	// Limit is the storage limit in bytes; zero means unlimited.
	Limit int64
	Usage int64
}

// Check asks Drive who the client is authorized as.
func Check(ctx context.Context, svc *drive.Service) (*Account, error) {
	const op = "drive.Check"
	about, err := svc.About.Get().Fields(aboutFields).Context(ctx).Do()
	if err != nil {
		return nil, errors.E(op, kind(err), err)
	}
	acct := &Account{}
	if u := about.User; u != nil {
		acct.DisplayName = u.DisplayName
		acct.Email = u.EmailAddress
	}
	if q := about.StorageQuota; q != nil {
		acct.Limit = q.Limit
		acct.Usage = q.Usage
	}
	return acct, nil
}

func kind(err error) errors.Kind {
	gerr, ok := err.(*googleapi.Error)
	if !ok {
		return errors.IO
	}
	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Permission
	case http.StatusNotFound:
		return errors.NotExist
	}
	return errors.IO
}
