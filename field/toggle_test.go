package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToggle_StartsSeekingDestination(t *testing.T) {
	tg := NewToggle(DefaultPeriod)
	assert.False(t, tg.Assembling())
	assert.Equal(t, DefaultPeriod, tg.Until())
}

func TestToggle_FlipsOncePerPeriod(t *testing.T) {
	tg := NewToggle(600 * time.Millisecond)
	frame := 10 * time.Millisecond

	fired := 0
	for i := 0; i < 59; i++ {
		fired += tg.Advance(frame)
	}
	assert.Equal(t, 0, fired)
	assert.False(t, tg.Assembling())

	fired += tg.Advance(frame)
	assert.Equal(t, 1, fired)
	assert.True(t, tg.Assembling())

	for i := 0; i < 60; i++ {
		fired += tg.Advance(frame)
	}
	assert.Equal(t, 2, fired)
	assert.False(t, tg.Assembling())
	assert.Equal(t, uint64(2), tg.Flips())
}

func TestToggle_LongGapFiresEveryPeriod(t *testing.T) {
	tg := NewToggle(time.Second)
	assert.Equal(t, 3, tg.Advance(3500*time.Millisecond))
	assert.True(t, tg.Assembling())
	assert.Equal(t, 500*time.Millisecond, tg.Until())
}

func TestToggle_DisabledPeriod(t *testing.T) {
	tg := NewToggle(0)
	assert.Equal(t, 0, tg.Advance(time.Hour))
	assert.False(t, tg.Assembling())

	assert.True(t, tg.Flip())
	assert.Equal(t, uint64(1), tg.Flips())
}

func TestToggle_IgnoresNegativeDt(t *testing.T) {
	tg := NewToggle(time.Second)
	assert.Equal(t, 0, tg.Advance(-5*time.Second))
	assert.Equal(t, time.Second, tg.Until())
}
