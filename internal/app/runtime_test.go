package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInTestModeFollowsEnv(t *testing.T) {
	t.Setenv("STOCKLINE_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv("STOCKLINE_TEST_MODE", "")
	RefreshTestMode()
	require.False(t, InTestMode())
}
