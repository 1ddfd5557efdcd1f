package rounding

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyMethods(t *testing.T) {
	cases := []struct {
		method   Method
		amount   string
		inc      string
		rounded  string
		adjusted string
	}{
		{MethodNearest, "18.02", "0.05", "18.00", "-0.02"},
		{MethodNearest, "18.03", "0.05", "18.05", "0.02"},
		{MethodNearest, "18.025", "0.05", "18.05", "0.02"},
		{MethodUp, "18.01", "0.05", "18.05", "0.04"},
		{MethodUp, "18.00", "0.05", "18.00", "0.00"},
		{MethodDown, "18.04", "0.05", "18.00", "-0.04"},
		{MethodNearest, "19.80", "1.00", "20.00", "0.20"},
		{MethodDown, "0.03", "0.05", "0.00", "-0.03"},
	}
	for _, tc := range cases {
		res, err := Apply(d(tc.amount), &Policy{TenderType: "CASH", Method: tc.method, Increment: d(tc.inc)})
		require.NoError(t, err)
		require.True(t, res.Applied)
		require.Equal(t, tc.rounded, res.Rounded.StringFixed(2), "%s %s", tc.method, tc.amount)
		require.Equal(t, tc.adjusted, res.Adjustment.StringFixed(2), "%s %s", tc.method, tc.amount)
		require.True(t, res.Rounded.Sub(res.Original).Equal(res.Adjustment))
	}
}

func TestApplyOnRoundedAmountIsNoop(t *testing.T) {
	for _, method := range []Method{MethodNearest, MethodUp, MethodDown} {
		for _, inc := range []string{"0.05", "0.10", "1.00"} {
			for _, amount := range []string{"0.00", "18.00", "19.80", "250.00"} {
				p := &Policy{TenderType: "CASH", Method: method, Increment: d(inc)}
				first, err := Apply(d(amount), p)
				require.NoError(t, err)
				again, err := Apply(first.Rounded, p)
				require.NoError(t, err)
				require.True(t, again.Adjustment.IsZero(), "%s %s step %s", method, amount, inc)
				require.True(t, again.Rounded.Equal(first.Rounded))
			}
		}
	}
}

func TestApplyWithoutPolicy(t *testing.T) {
	res, err := Apply(d("12.345"), nil)
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.Equal(t, "12.35", res.Rounded.StringFixed(2))
	require.True(t, res.Adjustment.IsZero())
}

func TestApplyRejectsBadConfig(t *testing.T) {
	_, err := Apply(d("10"), &Policy{TenderType: "CASH", Method: MethodNearest, Increment: decimal.Zero})
	require.Error(t, err)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = Apply(d("10"), &Policy{TenderType: "CASH", Method: "SIDEWAYS", Increment: d("0.05")})
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = Apply(d("-1"), nil)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

type stubPolicies struct {
	row dbgen.RoundingPolicy
	err error
	got dbgen.GetActiveRoundingPolicyParams
}

func (s *stubPolicies) GetActiveRoundingPolicy(_ context.Context, arg dbgen.GetActiveRoundingPolicyParams) (dbgen.RoundingPolicy, error) {
	s.got = arg
	return s.row, s.err
}

func TestResolve(t *testing.T) {
	store := pgtype.UUID{Bytes: [16]byte{1}, Valid: true}
	stub := &stubPolicies{row: dbgen.RoundingPolicy{TenderType: "CASH", RoundingMethod: "NEAREST", IncrementAmount: d("0.05"), Active: true}}

	res, err := Resolve(context.Background(), stub, store, " cash ", d("18.02"))
	require.NoError(t, err)
	require.Equal(t, "CASH", stub.got.TenderType)
	require.True(t, res.Applied)
	require.Equal(t, "18.00", res.Rounded.StringFixed(2))

	res, err = Resolve(context.Background(), stub, store, "", d("18.02"))
	require.NoError(t, err)
	require.False(t, res.Applied)

	missing := &stubPolicies{err: pgx.ErrNoRows}
	res, err = Resolve(context.Background(), missing, store, "CARD", d("18.02"))
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.Equal(t, "CARD", res.TenderType)
	require.Equal(t, "18.02", res.Rounded.StringFixed(2))
}
