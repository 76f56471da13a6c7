package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"flash-backend/internal/shared/config"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{name: "defaults", args: nil, want: options{timeout: 2 * time.Minute}},
		{name: "check", args: []string{"--check", "--timeout", "30s"}, want: options{check: true, timeout: 30 * time.Second}},
		{name: "database url", args: []string{"--database-url", "postgres://db/flash"}, want: options{databaseURL: "postgres://db/flash", timeout: 2 * time.Minute}},
		{name: "zero timeout", args: []string{"--timeout", "0s"}, wantErr: true},
		{name: "unknown flag", args: []string{"--down"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %v", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRunSkipsStoresWithoutSchema(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), config.Config{DocStoreType: "firestore"}, options{timeout: time.Second}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "DOC_STORE=firestore") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunPostgresNeedsURL(t *testing.T) {
	err := run(context.Background(), config.Config{DocStoreType: "postgres"}, options{timeout: time.Second}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected a missing URL error, got %v", err)
	}
}
