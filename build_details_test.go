package oasderef

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDetailsDefaults(t *testing.T) {
	// Development builds carry placeholders; release builds set them via ldflags.
	assert.True(t, Version() == "dev" || strings.HasPrefix(Version(), "v"), "unexpected version %q", Version())
	assert.NotEmpty(t, Commit())
	assert.NotEmpty(t, BuildTime())
	assert.Equal(t, runtime.Version(), GoVersion())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.Equal(t, "oasderef/"+Version(), ua)
	assert.NotContains(t, ua, " ")
	assert.NotContains(t, ua, "\n")
}

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	for _, want := range []string{
		"Version: " + Version(),
		"Commit: " + Commit(),
		"Build Time: " + BuildTime(),
		"Go Version: " + GoVersion(),
	} {
		assert.Contains(t, info, want)
	}
}
