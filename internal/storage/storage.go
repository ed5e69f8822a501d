package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the minimal S3-compatible operations planning reports need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ReportKey names the CSV export of one plan run:
// <prefix>/<warehouse>/<yyyy-mm-dd>/<run>.csv
func ReportKey(prefix, warehouseID, runID string, at time.Time) string {
	warehouse := strings.Trim(strings.ReplaceAll(warehouseID, "/", "_"), " ")
	if warehouse == "" {
		warehouse = "all"
	}
	return path.Join(strings.Trim(prefix, "/"), warehouse, at.UTC().Format("2006-01-02"), fmt.Sprintf("%s.csv", runID))
}
