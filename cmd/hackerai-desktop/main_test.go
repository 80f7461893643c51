package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchArgs(t *testing.T) {
	got := launchArgs([]string{"/Applications/HackerAI.app/Contents/MacOS/HackerAI", "-psn_0_12345", "hackerai://auth"})
	assert.Equal(t, []string{"/Applications/HackerAI.app/Contents/MacOS/HackerAI", "hackerai://auth"}, got)
}

func TestInstanceIDIsStable(t *testing.T) {
	id := instanceID()
	assert.Equal(t, id, instanceID())

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}
