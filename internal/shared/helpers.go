// Package shared provides common utility functions used across multiple
// packages in the appstore-submit codebase.
package shared

import (
	"context"
	"fmt"
	"time"
)

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response detail for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, detail string) error {
	return fmt.Errorf("status=%d url=%s detail=%s", status, url, detail)
}

// Sleep waits for the duration unless the context ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
