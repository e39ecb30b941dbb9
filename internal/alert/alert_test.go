package alert

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	for in, want := range map[string]Condition{
		"gt": GreaterThan, "Greater-Than": GreaterThan, "above": GreaterThan, ">": GreaterThan,
		"lt": LessThan, "less-than": LessThan, " BELOW ": LessThan, "<": LessThan,
	} {
		got, err := ParseCondition(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseCondition("between")
	require.Error(t, err)
}

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]Frequency{
		"once": Once, "per_hour": PerHour, "hourly": PerHour, "PER_DAY": PerDay, "daily": PerDay,
	} {
		got, err := ParseFrequency(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFrequency("weekly")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := Alert{Symbol: "AAPL", Condition: GreaterThan, Threshold: 150, Frequency: Once}
	require.NoError(t, ok.Validate())

	bad := []Alert{
		{Symbol: " ", Condition: GreaterThan, Frequency: Once},
		{Symbol: "AAPL", Condition: GreaterThan, Threshold: math.NaN(), Frequency: Once},
		{Symbol: "AAPL", Condition: GreaterThan, Threshold: math.Inf(1), Frequency: Once},
		{Symbol: "AAPL", Condition: "eq", Frequency: Once},
		{Symbol: "AAPL", Condition: LessThan, Frequency: "weekly"},
	}
	for _, a := range bad {
		require.True(t, errors.Is(a.Validate(), ErrInvalid), "%+v", a)
	}
}

func TestMessage(t *testing.T) {
	require.Equal(t, "AAPL is above 150", Message("AAPL", GreaterThan, 150))
	require.Equal(t, "AAPL is below 150.5", Message("AAPL", LessThan, 150.5))
	require.Equal(t, "BTCUSDT is above 0.0001", Message("BTCUSDT", GreaterThan, 0.0001))
}
