package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/contourfold/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	line := version.String()

	assert.Contains(t, line, "contourfold ")
	assert.Contains(t, line, "commit: ")
	assert.Contains(t, line, "built: ")
}

// Mutates package state, so not parallel.
func TestInitBinaryVersion_KeepsLinkedValues(t *testing.T) {
	before := version.Version

	version.InitBinaryVersion()

	if before != "dev" {
		assert.Equal(t, before, version.Version)
	}

	assert.NotEmpty(t, version.Version)
}
