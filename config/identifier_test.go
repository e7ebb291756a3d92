package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	require := require.New(t)

	for _, tc := range []struct {
		id    string
		valid bool
	}{
		{"", false},
		{"Testnet", false},
		{strings.Repeat("a", maxIdentifierLength), true},
		{strings.Repeat("a", maxIdentifierLength+1), false},
		{"local.node", false},
		{"test:alice", false},
		{"-sanvil", false},
		{"_sanvil", false},
		{"5124", true},
		{"sanvil", true},
		{"seismic-devnet_2", true},
	} {
		err := ValidateIdentifier(tc.id)
		if tc.valid {
			require.NoError(err, tc.id)
		} else {
			require.ErrorIs(err, ErrInvalidIdentifier, tc.id)
		}
	}
}
