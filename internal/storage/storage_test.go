package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2025, 5, 4, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "reports/wh-1/2025-05-04/run-1.csv", ReportKey("/reports/", "wh-1", "run-1", at))
	assert.Equal(t, "reports/all/2025-05-04/run-1.csv", ReportKey("reports", "", "run-1", at))
	assert.Equal(t, "eu_north/2025-05-04/run-1.csv", ReportKey("", "eu/north", "run-1", at))
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"https://s3.example.com/", false, "s3.example.com", true},
		{"http://localhost:9000", true, "localhost:9000", false},
		{"minio:9000", true, "minio:9000", true},
		{"//minio:9000", false, "minio:9000", false},
	}

	for _, tt := range tests {
		host, secure := normalizeEndpoint(tt.in, tt.useSSL)
		assert.Equal(t, tt.wantHost, host, tt.in)
		assert.Equal(t, tt.wantSecure, secure, tt.in)
	}
}

func TestNewMinioClient_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewMinioClient(ctx, MinioConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")

	_, err = NewMinioClient(ctx, MinioConfig{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewMinioClient(ctx, MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")
}
