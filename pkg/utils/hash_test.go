package utils

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestBuildHashOrderIndependent(t *testing.T) {
	a := BuildHash([]string{"tune-stage2", "downpipe", "intake"})
	b := BuildHash([]string{"intake", "tune-stage2", "downpipe"})
	assert.Equal(t, a, b)
}

func TestBuildHashDistinguishesBuilds(t *testing.T) {
	a := BuildHash([]string{"tune-stage2", "downpipe"})
	b := BuildHash([]string{"tune-stage2", "downpipe", "intake"})
	assert.Assert(t, a != b)
}

func TestBuildHashDoesNotMutateInput(t *testing.T) {
	ids := []string{"z-mod", "a-mod"}
	BuildHash(ids)
	assert.Equal(t, ids[0], "z-mod")
}
