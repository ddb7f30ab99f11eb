package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	result := c.Now()
	after := time.Now()

	assert.False(t, result.Before(before), "RealClock.Now() should not be before the call")
	assert.False(t, result.After(after), "RealClock.Now() should not be after the call")
}

func TestRealClock_NowUnixMilli(t *testing.T) {
	c := RealClock{}
	before := time.Now().UnixMilli()
	result := c.NowUnixMilli()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, result, before)
	assert.LessOrEqual(t, result, after)
}

func TestMockClock_Now(t *testing.T) {
	fixedTime := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	c := NewMockClock(fixedTime)

	assert.Equal(t, fixedTime, c.Now())
	// Should return the same time on repeated calls
	assert.Equal(t, fixedTime, c.Now())
}

func TestMockClock_NowUnixMilli(t *testing.T) {
	fixedTime := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	c := NewMockClock(fixedTime)

	expected := fixedTime.UnixMilli()
	assert.Equal(t, expected, c.NowUnixMilli())
}

func TestMockClock_Set(t *testing.T) {
	initialTime := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	newTime := time.Date(2024, 12, 25, 12, 0, 0, 0, time.UTC)

	c := NewMockClock(initialTime)
	assert.Equal(t, initialTime, c.Now())

	c.Set(newTime)
	assert.Equal(t, newTime, c.Now())
}

func TestMockClock_Advance(t *testing.T) {
	initialTime := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	c := NewMockClock(initialTime)

	// Advance by 1 hour
	c.Advance(1 * time.Hour)
	expected := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, expected, c.Now())

	// Advance by 30 minutes
	c.Advance(30 * time.Minute)
	expected = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, expected, c.Now())

	// Advance by negative duration (go back in time)
	c.Advance(-1 * time.Hour)
	expected = time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, expected, c.Now())
}

// TestMockClock_ConcurrentAccess verifies thread-safety of MockClock.
// Run with '-race' flag to detect race conditions.
func TestMockClock_ConcurrentAccess(t *testing.T) {
	initialTime := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	c := NewMockClock(initialTime)

	const goroutines = 100
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines * 3) // readers, setters, and advancers

	// Concurrent readers
	for n := 0; n < goroutines; n++ {
		go func() {
			defer wg.Done()
			for k := 0; k < iterations; k++ {
				_ = c.Now()
				_ = c.NowUnixMilli()
			}
		}()
	}

	// Concurrent setters
	for i := 0; i < goroutines; i++ {
		go func(offset int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				c.Set(initialTime.Add(time.Duration(offset+j) * time.Second))
			}
		}(i)
	}

	// Concurrent advancers
	for n := 0; n < goroutines; n++ {
		go func() {
			defer wg.Done()
			for k := 0; k < iterations; k++ {
				c.Advance(time.Millisecond)
			}
		}()
	}

	// Wait for all goroutines to complete
	wg.Wait()

	// If we reach here without panics or race detector errors, the test passes
	// Just verify the clock still works
	_ = c.Now()
}
