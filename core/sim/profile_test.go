package sim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfileValidate(t *testing.T) {
	assert.Error(t, Profile{}.Validate())
	assert.Error(t, Profile{{CurrentA: 1, Duration: 0}}.Validate())
	assert.Error(t, Profile{{CurrentA: 1, Duration: -time.Second}}.Validate())
	assert.Error(t, Profile{{CurrentA: math.NaN(), Duration: time.Second}}.Validate())
	assert.NoError(t, Profile{{CurrentA: 0, Duration: time.Second}}.Validate())
}

func TestProfileCurrentAt(t *testing.T) {
	p := Profile{
		{CurrentA: 1.0, Duration: time.Hour},
		{CurrentA: -1.0, Duration: time.Hour},
	}

	assert.Equal(t, 1.0, p.CurrentAt(0))
	assert.Equal(t, 1.0, p.CurrentAt(time.Hour-time.Second))
	assert.Equal(t, -1.0, p.CurrentAt(time.Hour))
	assert.Equal(t, -1.0, p.CurrentAt(2*time.Hour-time.Second))
	// Past the profile the pack rests.
	assert.Equal(t, 0.0, p.CurrentAt(2*time.Hour))
	assert.Equal(t, 0.0, p.CurrentAt(-time.Second))
}

func TestProfileTotalDuration(t *testing.T) {
	p := Profile{
		{CurrentA: 1.0, Duration: 30 * time.Minute},
		{CurrentA: 0, Duration: 10 * time.Minute},
		{CurrentA: -2.0, Duration: 20 * time.Minute},
	}
	assert.Equal(t, time.Hour, p.TotalDuration())
}
