package surface

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"seller-dashboard/internal/domain"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "0m", TimeAgo(now.Add(-30*time.Second), now))
	assert.Equal(t, "45m", TimeAgo(now.Add(-45*time.Minute), now))
	assert.Equal(t, "59m", TimeAgo(now.Add(-59*time.Minute-59*time.Second), now))
	assert.Equal(t, "1h", TimeAgo(now.Add(-90*time.Minute), now))
	assert.Equal(t, "23h", TimeAgo(now.Add(-23*time.Hour-59*time.Minute), now))
	assert.Equal(t, "2d", TimeAgo(now.Add(-50*time.Hour), now))
	assert.Equal(t, "29d", TimeAgo(now.Add(-29*24*time.Hour), now))

	created := now.Add(-40 * 24 * time.Hour)
	assert.Equal(t, created.Local().Format("1/2/2006"), TimeAgo(created, now))

	assert.Equal(t, "0m", TimeAgo(now.Add(time.Minute), now), "clock skew renders as just now")
}

func TestLinkOrDefault(t *testing.T) {
	link := "/orders/42"
	empty := ""

	assert.Equal(t, "/orders/42", LinkOrDefault(domain.Notification{Link: &link}))
	assert.Equal(t, DefaultLink, LinkOrDefault(domain.Notification{Link: &empty}))
	assert.Equal(t, DefaultLink, LinkOrDefault(domain.Notification{}))
}

func TestCanReply(t *testing.T) {
	msg := "Where is my parcel?"

	assert.True(t, CanReply(domain.Notification{Message: &msg}))
	assert.False(t, CanReply(domain.Notification{}))
}
