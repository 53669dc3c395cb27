package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFileAndLoC(t *testing.T) {
	got := GetFileAndLoC(0)

	// the absolute prefix depends on the checkout location, the tail does not
	assert.True(t, strings.HasSuffix(got, "pkg/utils/debug_test.go:11"),
		"GetFileAndLoC() = %v, want suffix pkg/utils/debug_test.go:11", got)
}
