package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, ContainsAnyFold("ZERO_RESULTS", "zero_results"))
	assert.True(t, ContainsAnyFold("geocoding: No results found.", "timeout", "no results"))
	assert.False(t, ContainsAnyFold("REQUEST_DENIED", "zero_results", "no results"))
	assert.False(t, ContainsAnyFold("anything", ""))
	assert.False(t, ContainsAnyFold("anything"))
}
