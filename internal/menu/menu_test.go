package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	require.Len(t, Burgers, 3)

	b, err := ByID(1)
	require.NoError(t, err)
	assert.Equal(t, "클래식 치즈버거", b.Name)
	assert.Equal(t, 8500, b.Price)

	b, err = ByID(2)
	require.NoError(t, err)
	assert.Equal(t, "베이컨 디럭스", b.Name)
	assert.Equal(t, 10500, b.Price)

	b, err = ByID(3)
	require.NoError(t, err)
	assert.Equal(t, "스파이시 치킨버거", b.Name)
	assert.Equal(t, 9000, b.Price)

	_, err = ByID(4)
	assert.Error(t, err)
}

func TestFormatWon(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		8500:     "8,500",
		10500:    "10,500",
		1234567:  "1,234,567",
		-8500:    "-8,500",
		100000:   "100,000",
		19000:    "19,000",
	}
	for amount, want := range cases {
		if got := FormatWon(amount); got != want {
			t.Errorf("FormatWon(%d) = %q, want %q", amount, got, want)
		}
	}
}

func TestWon(t *testing.T) {
	assert.Equal(t, "₩8,500", Won(8500))
}
