// FILE: ziplog/src/internal/version/version_test.go
package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, "ziplog "+Version)
	assert.Contains(t, s, runtime.Version())
	assert.Equal(t, Version, Short())
	assert.Equal(t, GitCommit, Info()["git_commit"])
}
