package inpaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestParseMethod(t *testing.T) {
	cases := []struct {
		input string
		want  Method
	}{
		{"telea", MethodTelea},
		{"TELEA", MethodTelea},
		{" telea ", MethodTelea},
		{"fast-marching", MethodTelea},
		{"fmm", MethodTelea},
		{"Telea (fast marching)", MethodTelea},
		{"ns", MethodNavierStokes},
		{"NS", MethodNavierStokes},
		{"navier-stokes", MethodNavierStokes},
		{"fluid", MethodNavierStokes},
		{"Navier-Stokes (fluid)", MethodNavierStokes},
	}

	for _, tc := range cases {
		got, err := ParseMethod(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestParseMethodRejectsUnknown(t *testing.T) {
	_, err := ParseMethod("blur")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = ParseMethod("")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMethodRoundTripsThroughNames(t *testing.T) {
	for _, m := range Methods() {
		assert.True(t, m.Valid())

		fromShort, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, fromShort)

		fromDisplay, err := ParseMethod(m.DisplayName())
		require.NoError(t, err)
		assert.Equal(t, m, fromDisplay)
	}
}

func TestMethodFlags(t *testing.T) {
	assert.Equal(t, gocv.Telea, MethodTelea.Flag())
	assert.Equal(t, gocv.NS, MethodNavierStokes.Flag())
}

func TestMethodValid(t *testing.T) {
	assert.False(t, Method(99).Valid())
	assert.NotEqual(t, MethodTelea.DisplayName(), MethodNavierStokes.DisplayName())
}
