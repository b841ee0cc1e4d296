package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_StepsPerReading(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := NewDeterministicClock(start, 250*time.Millisecond)

	assert.Equal(t, start, clock.Now(), "first reading is the start time")
	assert.Equal(t, start.Add(250*time.Millisecond), clock.Now())
	assert.Equal(t, start.Add(500*time.Millisecond), clock.Now())
}

func TestDeterministicClock_Reset(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := NewDeterministicClock(start, time.Second)

	clock.Now()
	clock.Now()
	clock.Reset()

	assert.Equal(t, start, clock.Now(), "reset rewinds to the start time")
}
