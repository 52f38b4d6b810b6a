package normalizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDisplayAmount(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{text: "Rp 150.000", want: 150000},
		{text: "Rp 3.999", want: 3999},
		{text: "Rp150.000", want: 150000},
		{text: "rp. 12.345", want: 12345},
		{text: "IDR 1.000.000", want: 1000000},
		{text: "Rp 25.500", want: 25500},
		{text: "Rp 1.500,00", want: 1500},
		{text: "  7.000 ", want: 7000},
		{text: "-", want: 0},
		{text: "", want: 0},
		{text: "Rp", want: 0},
		{text: "gratis", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, ParseDisplayAmount(tt.text))
		})
	}
}

func TestMajorFromMinor(t *testing.T) {
	require.Equal(t, "3999.00", MajorFromMinor(399900).StringFixed(2))
	require.Equal(t, "0.01", MajorFromMinor(1).StringFixed(2))
	require.Equal(t, "0.00", MajorFromMinor(0).StringFixed(2))
}

func TestFormatDisplayAmount(t *testing.T) {
	require.Equal(t, "Rp 1.500", FormatDisplayAmount(150000))
	require.Equal(t, "Rp 3.999", FormatDisplayAmount(399900))
	require.Equal(t, "Rp 3.999,5", FormatDisplayAmount(399950))
	require.Equal(t, "Rp 0", FormatDisplayAmount(0))
}
