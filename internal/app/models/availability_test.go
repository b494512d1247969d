package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoctorAvailability_ClaimAndRelease(t *testing.T) {
	window := &DoctorAvailability{MaxSlots: 2}

	assert.True(t, window.Claim())
	assert.True(t, window.Claim())
	assert.False(t, window.Claim())
	assert.Equal(t, 2, window.BookedCount)

	window.Release()
	window.Release()
	window.Release()
	assert.Equal(t, 0, window.BookedCount)
	assert.True(t, window.HasCapacity())
}
