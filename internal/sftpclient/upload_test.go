package sftpclient

import (
	"context"
	"strings"
	"testing"
	"time"
)

// The actual transfer needs a live SFTP server; these tests cover the
// validation and dial paths that run before any network I/O succeeds.

func TestUploadReportsMissingCredentials(t *testing.T) {
	err := UploadReports(context.Background(), Config{}, "report.json")
	if err == nil {
		t.Fatal("expected error for empty config, got nil")
	}
	if !strings.Contains(err.Error(), "REPORT_SFTP_HOST") {
		t.Errorf("error should name the missing env vars, got %q", err.Error())
	}
}

func TestUploadReportsDialCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := Config{
		Host: "198.51.100.1", // TEST-NET-2, never routable
		User: "reports",
		Pass: "secret",
	}
	err := UploadReports(ctx, cfg, "report.json")
	if err == nil {
		t.Fatal("expected dial failure, got nil")
	}
	if !strings.Contains(err.Error(), "sftp:") {
		t.Errorf("unexpected error: %v", err)
	}
}
