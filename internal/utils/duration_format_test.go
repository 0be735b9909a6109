package utils_test

import (
	"testing"

	"github.com/CareTrackHQ/caretrack_app/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", utils.FormatDuration(45))
	assert.Equal(t, "8h", utils.FormatDuration(480))
	assert.Equal(t, "8h 30m", utils.FormatDuration(510))
	assert.Equal(t, "0m", utils.FormatDuration(0))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "250m", utils.FormatDistance(250))
	assert.Equal(t, "1.5km", utils.FormatDistance(1500))
}
