package trips

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberToFrenchWords(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "zéro"},
		{1, "un"},
		{16, "seize"},
		{17, "dix-sept"},
		{21, "vingt et un"},
		{70, "soixante-dix"},
		{71, "soixante et onze"},
		{72, "soixante-douze"},
		{80, "quatre-vingts"},
		{81, "quatre-vingt-un"},
		{90, "quatre-vingt-dix"},
		{91, "quatre-vingt-onze"},
		{100, "cent"},
		{101, "cent un"},
		{200, "deux cents"},
		{231, "deux cent trente et un"},
		{1000, "mille"},
		{1100, "mille cent"},
		{2000, "deux mille"},
		{14615, "quatorze mille six cent quinze"},
		{39124, "trente-neuf mille cent vingt-quatre"},
		{1_000_000, "un million"},
		{2_500_000, "deux millions cinq cent mille"},
		{1_000_000_000, "un milliard"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NumberToFrenchWords(tc.n), "n=%d", tc.n)
	}
}

func TestAmountInWords(t *testing.T) {
	assert.Equal(t, "sept cent cinquante dirhams", AmountInWords(750.00))
	assert.Equal(t, "un dirham", AmountInWords(1.00))
	assert.Equal(t,
		"huit cent vingt-cinq dirhams et cinquante centimes",
		AmountInWords(825.50))
	assert.Equal(t,
		"zéro dirhams et un centime",
		AmountInWords(0.01))
}

func TestFilterSeals(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, FilterSeals([]string{" A ", "", "  ", "B"}))
	assert.Empty(t, FilterSeals([]string{"", " "}))
}
