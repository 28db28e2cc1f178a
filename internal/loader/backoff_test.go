package loader

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
		wantOK bool
	}{
		{"integer seconds", "3", 3 * time.Second, true},
		{"fractional seconds", "0.25", 250 * time.Millisecond, true},
		{"zero", "0", 0, true},
		{"negative clamps to zero", "-5", 0, true},
		{"whitespace", "  4 ", 4 * time.Second, true},
		{"future date", testNow.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second, true},
		{"near date clamps to floor", testNow.Add(200 * time.Millisecond).Format(http.TimeFormat), time.Second, true},
		{"past date clamps to floor", "Mon, 01 Jan 2024 00:00:00 GMT", time.Second, true},
		{"huge value saturates", strconv.FormatFloat(1e30, 'f', -1, 64), time.Duration(math.MaxInt64), true},
		{"empty", "", 0, false},
		{"garbage", "later", 0, false},
		{"nan", "NaN", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRetryAfter(tt.header, testNow, time.Second)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetryDelay(t *testing.T) {
	p := DefaultRetryPolicy()
	maxJitter := func(limit time.Duration) time.Duration { return limit }

	assert.Equal(t, 500*time.Millisecond+400*time.Millisecond, retryDelay(p, errors.New("timeout"), 0, testNow, maxJitter))
	assert.Equal(t, 2*time.Second+400*time.Millisecond, retryDelay(p, errServer, 2, testNow, maxJitter))

	limited := statusErr(http.StatusTooManyRequests, "")
	assert.Equal(t, time.Second+500*time.Millisecond, retryDelay(p, limited, 0, testNow, maxJitter))
	assert.Equal(t, 4*time.Second+500*time.Millisecond, retryDelay(p, limited, 2, testNow, maxJitter))

	withHeader := statusErr(http.StatusTooManyRequests, "10")
	assert.Equal(t, 10*time.Second, retryDelay(p, withHeader, 2, testNow, noJitter))
}

func TestRandomJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), randomJitter(0))
	assert.Equal(t, time.Duration(0), randomJitter(-time.Second))
	for range 100 {
		j := randomJitter(400 * time.Millisecond)
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, 400*time.Millisecond)
	}
}

func TestExponential(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, exponential(500*time.Millisecond, 30*time.Second, 0))
	assert.Equal(t, 4*time.Second, exponential(500*time.Millisecond, 30*time.Second, 3))
	assert.Equal(t, 30*time.Second, exponential(500*time.Millisecond, 30*time.Second, 10))
	assert.Equal(t, 30*time.Second, exponential(time.Minute, 30*time.Second, 0))
	assert.Equal(t, 8*time.Second, exponential(time.Second, 0, 3), "zero ceiling disables the cap")
}
