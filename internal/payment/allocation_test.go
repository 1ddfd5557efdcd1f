package payment_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/payment"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestSettleAssignsChangeToLastCash(t *testing.T) {
	b, err := payment.Settle([]payment.AllocationInput{
		{TenderType: "cash", Amount: d("5.00")},
		{TenderType: " CARD ", Amount: d("10.00")},
		{TenderType: "CASH", Amount: d("2.00")},
	}, d("13.50"))
	require.NoError(t, err)
	require.True(t, b.Allocated.Equal(d("17.00")))
	require.True(t, b.Change.Equal(d("3.50")))

	require.Equal(t, "CASH", b.Allocations[0].TenderType)
	require.True(t, b.Allocations[2].Change.Equal(d("2.00")))
	require.True(t, b.Allocations[2].Applied.IsZero())
	require.True(t, b.Allocations[0].Change.Equal(d("1.50")))
	require.True(t, b.Allocations[0].Applied.Equal(d("3.50")))
	require.True(t, b.Allocations[1].Change.IsZero())

	applied := decimal.Zero
	for _, a := range b.Allocations {
		applied = applied.Add(a.Applied)
	}
	require.True(t, applied.Equal(d("13.50")))
}

func TestSettleExactCardPayment(t *testing.T) {
	b, err := payment.Settle([]payment.AllocationInput{{TenderType: "CARD", Amount: d("22.00")}}, d("22.00"))
	require.NoError(t, err)
	require.True(t, b.Change.IsZero())
	require.Equal(t, int32(1), b.Allocations[0].Seq)
}

func TestSettleRejects(t *testing.T) {
	ref := string(make([]byte, 121))
	cases := map[string][]payment.AllocationInput{
		"empty":          nil,
		"unknown tender": {{TenderType: "BITCOIN", Amount: d("30")}},
		"zero amount":    {{TenderType: "CASH", Amount: d("0")}},
		"three decimals": {{TenderType: "CASH", Amount: d("30.001")}},
		"underpaid":      {{TenderType: "CASH", Amount: d("10.00")}},
		"card change":    {{TenderType: "CARD", Amount: d("25.00")}},
		"long reference": {{TenderType: "CASH", Amount: d("30"), Reference: &ref}},
	}
	for name, in := range cases {
		_, err := payment.Settle(in, d("22.00"))
		require.Equal(t, common.CodeValidation, common.CodeOf(err), name)
	}
	_, err := payment.Settle([]payment.AllocationInput{{TenderType: "CARD", Amount: d("25.00")}}, d("22.00"))
	require.ErrorIs(t, err, payment.ErrChangeWithoutCash)
}

func TestRoundingTender(t *testing.T) {
	require.Equal(t, "CASH", payment.RoundingTender([]payment.AllocationInput{{TenderType: "card"}, {TenderType: "cash"}}))
	require.Equal(t, "VOUCHER", payment.RoundingTender([]payment.AllocationInput{{TenderType: " voucher"}, {TenderType: "CARD"}}))
	require.Empty(t, payment.RoundingTender(nil))
}

func TestNextTransitions(t *testing.T) {
	to, ok := payment.Next(payment.StatusAuthorized, payment.ActionCapture)
	require.True(t, ok)
	require.Equal(t, payment.StatusCaptured, to)
	to, ok = payment.Next(payment.StatusCaptured, payment.ActionRefund)
	require.True(t, ok)
	require.Equal(t, payment.StatusRefunded, to)
	_, ok = payment.Next(payment.StatusCaptured, payment.ActionVoid)
	require.False(t, ok)
	_, ok = payment.Next(payment.StatusRefunded, payment.ActionRefund)
	require.False(t, ok)
}
