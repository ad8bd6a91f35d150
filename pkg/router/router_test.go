package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBodyLimit(t *testing.T) {
	const oneMB = 1024 * 1024

	assert.Equal(t, oneMB, parseBodyLimit("1M"))
	assert.Equal(t, 512*1024, parseBodyLimit("512K"))
	assert.Equal(t, 2*1024*oneMB, parseBodyLimit("2G"))
	assert.Equal(t, 100, parseBodyLimit("100"))
	assert.Equal(t, 4*oneMB, parseBodyLimit(" 4m "), "units are case-insensitive")

	assert.Equal(t, oneMB, parseBodyLimit(""))
	assert.Equal(t, oneMB, parseBodyLimit("bogus"))
	assert.Equal(t, oneMB, parseBodyLimit("-5M"))
}
