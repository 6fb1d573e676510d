// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"upspin.io/errors"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func newService(t *testing.T, h http.HandlerFunc) *drive.Service {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/drive/v3/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestCheck(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drive/v3/about" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("fields"); got != aboutFields {
			t.Errorf("fields = %q, want %q", got, aboutFields)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"user":{"displayName":"Ana","emailAddress":"ana@example.com"},`+
			`"storageQuota":{"limit":"16106127360","usage":"2048"}}`)
	})
	acct, err := Check(context.Background(), svc)
	if err != nil {
		t.Fatal(err)
	}
	want := Account{DisplayName: "Ana", Email: "ana@example.com", Limit: 16106127360, Usage: 2048}
	if *acct != want {
		t.Errorf("got %+v, want %+v", *acct, want)
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		code int
		kind errors.Kind
	}{
		{http.StatusUnauthorized, errors.Permission},
		{http.StatusForbidden, errors.Permission},
		{http.StatusNotFound, errors.NotExist},
		{http.StatusBadRequest, errors.IO},
	}
	for _, test := range tests {
		code := test.code
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope"}}`, code)
		})
		_, err := Check(context.Background(), svc)
		if !errors.Is(test.kind, err) {
			t.Errorf("status %d: expected %v error, got %v", test.code, test.kind, err)
		}
	}
}
