package helpers

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SeismicSystems/seismic-go/config"
)

func TestParseDenomination(t *testing.T) {
	require := require.New(t)

	for _, decimals := range []struct {
		decimals uint8
		cases    []struct {
			amount   string
			valid    bool
			expected uint64
		}
	}{
		{9, []struct {
			amount   string
			valid    bool
			expected uint64
		}{
			{"", false, 0},
			{"0", true, 0},
			{"0.0", true, 0},
			{"0.0.0", false, 0},
			{"-1", false, 0},
			{"0.1", true, 100_000_000},
			{"1", true, 1_000_000_000},
			{"10", true, 10_000_000_000},
			{"10.123", true, 10_123_000_000},
			{"10.999999999", true, 10_999_999_999},
			{"10.9999999991", true, 10_999_999_999},
			{"10.9999999999", true, 10_999_999_999},
			{"10.999999999123456", true, 10_999_999_999},
		}},
		{3, []struct {
			amount   string
			valid    bool
			expected uint64
		}{
			{"0.1", true, 100},
			{"10.123", true, 10_123},
			{"10.999999999", true, 10_999},
		}},
	} {
		net := config.Network{
			Denomination: config.DenominationInfo{
				Symbol:   "TEST",
				Decimals: decimals.decimals,
			},
		}
		for _, tc := range decimals.cases {
			amount, err := ParseDenomination(&net, tc.amount)
			if tc.valid {
				require.NoError(err, tc.amount)
				require.EqualValues(tc.expected, amount.Uint64(), tc.amount)
			} else {
				require.Error(err, tc.amount)
			}
		}
	}

	eth := config.Network{Denomination: config.DenominationInfo{Symbol: "ETH", Decimals: 18}}
	amount, err := ParseDenomination(&eth, "1000000.000000000000000001")
	require.NoError(err)
	expected, _ := new(big.Int).SetString("1000000000000000000000001", 10)
	require.Equal(0, expected.Cmp(amount))
}

func TestFormatDenomination(t *testing.T) {
	require := require.New(t)

	net := config.Network{
		Denomination: config.DenominationInfo{
			Symbol:   "TEST",
			Decimals: 9,
		},
	}

	for _, tc := range []struct {
		amount   uint64
		expected string
	}{
		{0, "0.0 TEST"},
		{1, "0.000000001 TEST"},
		{1_000_000, "0.001 TEST"},
		{1_000_000_000, "1.0 TEST"},
		{10_000_000_000, "10.0 TEST"},
		{10_123_000_000, "10.123 TEST"},
		{10_123_456_789, "10.123456789 TEST"},
	} {
		require.EqualValues(tc.expected, FormatDenomination(&net, new(big.Int).SetUint64(tc.amount)), "%d", tc.amount)
	}
	require.EqualValues("0.0 TEST", FormatDenomination(&net, nil))
}
