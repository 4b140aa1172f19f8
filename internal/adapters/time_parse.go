package adapters

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseCreatedAt accepts the timestamp layouts commonly emitted by CI
// systems. An empty value means now.
func parseCreatedAt(value string, now func() time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return now().UTC().Truncate(time.Second), nil
	}
	for _, layout := range createdAtLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid creation time: " + trimmed)
}
