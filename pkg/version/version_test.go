package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	full := Full()
	assert.True(t, strings.HasPrefix(full, AppName+"/"))
	assert.NotEmpty(t, GitCommit)
	// Commit hashes are truncated to 8 chars; "dev" is shorter.
	assert.LessOrEqual(t, len(GitCommit), 8)
}
