package ports

import "context"

// Key-value store for user preferences (theme, tile layer) that
// survive restarts alongside history.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
