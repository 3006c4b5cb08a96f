package surface

import (
	"fmt"
	"time"

	"seller-dashboard/internal/domain"
)

// DefaultLink is where a notification without its own link points.
const DefaultLink = "/notifications"

// TimeAgo renders the age of a notification. Units come from integer
// division of elapsed milliseconds; anything 30 days or older is shown as a
// date.
func TimeAgo(created, now time.Time) string {
	elapsed := now.Sub(created).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	if minutes := elapsed / 60_000; minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if hours := elapsed / 3_600_000; hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	if days := elapsed / 86_400_000; days < 30 {
		return fmt.Sprintf("%dd", days)
	}
	return created.Local().Format("1/2/2006")
}

func LinkOrDefault(n domain.Notification) string {
	if n.Link == nil || *n.Link == "" {
		return DefaultLink
	}
	return *n.Link
}

// CanReply reports whether the reply control is shown for n.
func CanReply(n domain.Notification) bool {
	return n.Message != nil && *n.Message != ""
}
