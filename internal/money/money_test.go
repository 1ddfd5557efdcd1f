package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRoundHalfUp(t *testing.T) {
	require.Equal(t, "1.01", Format(Round(d("1.005"))))
	require.Equal(t, "1.00", Format(Round(d("1.004"))))
	require.Equal(t, "-1.01", Format(Round(d("-1.005"))))
}

func TestNormalizeRejectsNegative(t *testing.T) {
	_, err := Normalize(d("-0.01"))
	require.ErrorIs(t, err, ErrNegativeAmount)

	got, err := Normalize(d("12.345"))
	require.NoError(t, err)
	require.Equal(t, "12.35", Format(got))

	_, err = NormalizePtr(nil)
	require.ErrorIs(t, err, ErrAmountRequired)
}

func TestPositive(t *testing.T) {
	_, err := Positive(d("0.001"))
	require.ErrorIs(t, err, ErrNonPositiveAmount)
	got, err := Positive(d("5"))
	require.NoError(t, err)
	require.Equal(t, "5.00", Format(got))
}

func TestQuantity(t *testing.T) {
	got, err := Quantity(d("2.000"))
	require.NoError(t, err)
	require.Equal(t, "2", FormatQuantity(got))
	require.Equal(t, int32(0), got.Exponent())

	got, err = Quantity(d("0.250"))
	require.NoError(t, err)
	require.Equal(t, "0.25", FormatQuantity(got))

	_, err = Quantity(d("0"))
	require.ErrorIs(t, err, ErrNonPositiveQuantity)
	_, err = Quantity(d("-1"))
	require.ErrorIs(t, err, ErrNonPositiveQuantity)
	_, err = Quantity(d("1.0005"))
	require.ErrorIs(t, err, ErrQuantityScale)
}

func TestRate(t *testing.T) {
	_, err := Rate(d("100.01"))
	require.ErrorIs(t, err, ErrRateOutOfRange)
	_, err = Rate(d("-1"))
	require.ErrorIs(t, err, ErrRateOutOfRange)
	got, err := Rate(d("12.34567"))
	require.NoError(t, err)
	require.Equal(t, "12.3457", FormatRate(got))
}

func TestPercentAndExtend(t *testing.T) {
	require.Equal(t, "2.00", Format(PercentOf(d("20.00"), d("10"))))
	require.Equal(t, "0.34", Format(PercentOf(d("3.33"), d("10.25"))))
	require.Equal(t, "20.00", Format(Extend(d("2"), d("10.00"))))
	require.Equal(t, "3.69", Format(Extend(d("0.375"), d("9.85"))))
	require.Equal(t, "6.00", Format(Sum(d("1.50"), d("4.50"))))
	require.Equal(t, "1.50", Format(Min(d("1.50"), d("4.50"))))
}
