package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{" 2024-06-01 ", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-06-01T10:30:00", time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-06-01T10:30:00+02:00", time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)},
		{"2024-06-01T10:30:00Z", time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransactionDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	for _, bad := range []string{"", "01/06/2024", "June 1st"} {
		_, err := ParseTransactionDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestTransactionKindValid(t *testing.T) {
	for _, k := range []TransactionKind{KindDeposit, KindExpense, KindTransfer} {
		assert.True(t, k.Valid(), k)
	}
	for _, k := range []TransactionKind{"", "refund", "Deposit"} {
		assert.False(t, k.Valid(), k)
	}
}

func TestUpdateAccountRequestTagIDs(t *testing.T) {
	var omitted, cleared UpdateAccountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &omitted))
	require.NoError(t, json.Unmarshal([]byte(`{"tagIds":[]}`), &cleared))

	assert.Nil(t, omitted.TagIDs)
	require.NotNil(t, cleared.TagIDs)
	assert.Empty(t, *cleared.TagIDs)
}
