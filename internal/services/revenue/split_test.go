package revenue

import (
	"testing"

	apperrors "fanzvault/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateSplits(t *testing.T) {
	tests := []struct {
		name    string
		splits  []SplitInput
		wantErr bool
	}{
		{"exact", []SplitInput{{"x", 60}, {"y", 40}}, false},
		{"thirds within tolerance", []SplitInput{{"x", 33.33}, {"y", 33.33}, {"z", 33.34}}, false},
		{"just under tolerance", []SplitInput{{"x", 99.995}}, false},
		{"sums to 99", []SplitInput{{"x", 59}, {"y", 40}}, true},
		{"sums to 101", []SplitInput{{"x", 61}, {"y", 40}}, true},
		{"empty", nil, true},
		{"zero percentage", []SplitInput{{"x", 100}, {"y", 0}}, true},
		{"negative percentage", []SplitInput{{"x", 110}, {"y", -10}}, true},
		{"duplicate beneficiary", []SplitInput{{"x", 50}, {"x", 50}}, true},
		{"blank beneficiary", []SplitInput{{" ", 100}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplits(tt.splits)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidSplit)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestComputeSplits(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		splits        []SplitInput
		wantAmounts   []int64
		wantCredited  []int64
		wantRemainder int64
	}{
		{
			name:          "even",
			total:         10000,
			splits:        []SplitInput{{"x", 60}, {"y", 40}},
			wantAmounts:   []int64{6000, 4000},
			wantCredited:  []int64{6000, 4000},
			wantRemainder: 0,
		},
		{
			name:          "remainder to largest",
			total:         100,
			splits:        []SplitInput{{"x", 33.33}, {"y", 33.33}, {"z", 33.34}},
			wantAmounts:   []int64{33, 33, 33},
			wantCredited:  []int64{33, 33, 34},
			wantRemainder: 1,
		},
		{
			name:          "tie goes to earliest",
			total:         101,
			splits:        []SplitInput{{"x", 50}, {"y", 50}},
			wantAmounts:   []int64{50, 50},
			wantCredited:  []int64{51, 50},
			wantRemainder: 1,
		},
		{
			name:          "tiny total",
			total:         1,
			splits:        []SplitInput{{"x", 30}, {"y", 70}},
			wantAmounts:   []int64{0, 0},
			wantCredited:  []int64{0, 1},
			wantRemainder: 1,
		},
		{
			name:          "over-allocation within tolerance",
			total:         1000000,
			splits:        []SplitInput{{"x", 50.005}, {"y", 50.005}},
			wantAmounts:   []int64{499950, 500050},
			wantCredited:  []int64{499950, 500050},
			wantRemainder: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, remainder := ComputeSplits(tt.total, tt.splits)
			assert.Equal(t, tt.wantRemainder, remainder)

			var sum int64
			for i, sp := range got {
				assert.Equal(t, tt.wantAmounts[i], sp.Amount, "amount of %s", sp.UserID)
				assert.Equal(t, tt.wantCredited[i], sp.Credited(), "credited to %s", sp.UserID)
				assert.Equal(t, i, sp.Position)
				sum += sp.Credited()
			}
			assert.Equal(t, tt.total, sum)
		})
	}
}
