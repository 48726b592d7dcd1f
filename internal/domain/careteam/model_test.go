package careteam

import (
	"testing"
	"time"
)

func TestClassifyActivity(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}
	day := 24 * time.Hour

	tests := []struct {
		name string
		last *time.Time
		want Activity
	}{
		{"never recorded", nil, ActivityNone},
		{"just now", ago(0), ActivityVeryActive},
		{"one day", ago(day), ActivityVeryActive},
		{"just under two days", ago(2*day - time.Minute), ActivityVeryActive},
		{"two days", ago(2 * day), ActivityActive},
		{"three days", ago(3 * day), ActivityActive},
		{"four days", ago(4 * day), ActivityModerate},
		{"seven days", ago(7 * day), ActivityModerate},
		{"seven days and change", ago(7*day + 23*time.Hour), ActivityModerate},
		{"eight days", ago(8 * day), ActivityInactive},
		{"a year", ago(365 * day), ActivityInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyActivity(tt.last, now); got != tt.want {
				t.Errorf("ClassifyActivity() = %s, want %s", got, tt.want)
			}
		})
	}
}
