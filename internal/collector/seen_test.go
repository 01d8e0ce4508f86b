package collector

import (
	"testing"
	"time"
)

func TestSeenCache(t *testing.T) {
	seen := NewSeenCache(time.Hour)

	if seen.Seen("a|2025-01-02T03:04:05Z") {
		t.Fatalf("first sighting should not be seen")
	}
	if !seen.Seen("a|2025-01-02T03:04:05Z") {
		t.Fatalf("second sighting should be seen")
	}
	if seen.Seen("a|2025-01-02T03:05:05Z") {
		t.Fatalf("different timestamp should not be seen")
	}
}
