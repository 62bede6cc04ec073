package dynamodb

import (
	"testing"
	"time"

	"chirp/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Key-position timestamps must sort lexicographically in chronological
// order. The tricky pair is a fraction with trailing zeros against one a
// single nanosecond later: a format that trims trailing zeros renders the
// earlier instant as ".1Z", which compares greater than ".100000001Z".
func TestKeyTime_LexicographicOrder(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 100000000, time.UTC)
	later := base.Add(time.Nanosecond)

	assert.Less(t, keyTime(base), keyTime(later))
	assert.Len(t, keyTime(base), len(keyTime(later)))

	// Whole seconds get the same width
	whole := time.Date(2026, 8, 29, 12, 0, 1, 0, time.UTC)
	assert.Less(t, keyTime(later), keyTime(whole))
	assert.Len(t, keyTime(whole), len(keyTime(base)))
}

func TestKeyTime_RoundTrips(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 100000000, time.UTC)

	parsed, err := time.Parse(time.RFC3339Nano, keyTime(base))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base))
}

func TestNotificationSK_Order(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 100000000, time.UTC)
	later := base.Add(time.Nanosecond)

	assert.Less(t, notificationSK(base, "aaaa"), notificationSK(later, "aaaa"))
}

func TestToPostItem_KeyTimestamps(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 100000000, time.UTC)
	earlier := &entities.Post{ID: "p1", UserID: "u1", Text: "first", CreatedAt: base}
	later := &entities.Post{ID: "p2", UserID: "u1", Text: "second", CreatedAt: base.Add(time.Nanosecond)}

	a, b := toPostItem(earlier), toPostItem(later)
	assert.Less(t, a.GSI1SK, b.GSI1SK)
	assert.Less(t, a.GSI2SK, b.GSI2SK)
}
