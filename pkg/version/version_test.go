package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	require.True(t, strings.HasPrefix(Info(), "cvesync "))
}

func TestGet(t *testing.T) {
	s := Get()
	require.Equal(t, Version, s.Version)
	require.Equal(t, Commit, s.Commit)
	require.Equal(t, BuildDate, s.BuildDate)
}

func TestCheckAirflowCompatibility(t *testing.T) {
	ok, err := CheckAirflowCompatibility("2.7.1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CheckAirflowCompatibility("2.0.0")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CheckAirflowCompatibility("1.10.15")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = CheckAirflowCompatibility("not-a-version")
	require.Error(t, err)
}
