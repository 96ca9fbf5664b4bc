package hashchain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func buildChain(userID int64, n int) []Record {
	records := make([]Record, 0, n)
	prev := Genesis
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		r := Record{
			ID:           string(rune('a'+i)) + "-entry",
			UserID:       userID,
			Type:         "purchase",
			Amount:       int64(100 * (i + 1)),
			CreatedAt:    created.Add(time.Duration(i) * time.Second),
			PreviousHash: prev,
		}
		r.Hash = Compute(r.ID, r.UserID, r.Type, r.Amount, r.CreatedAt, r.PreviousHash)
		prev = r.Hash
		records = append(records, r)
	}
	return records
}

func TestCompute(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h1 := Compute("id-1", 1, "purchase", 100, created, Genesis)
	h2 := Compute("id-1", 1, "purchase", 100, created, Genesis)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	assert.NotEqual(t, h1, Compute("id-2", 1, "purchase", 100, created, Genesis))
	assert.NotEqual(t, h1, Compute("id-1", 2, "purchase", 100, created, Genesis))
	assert.NotEqual(t, h1, Compute("id-1", 1, "gift_sent", 100, created, Genesis))
	assert.NotEqual(t, h1, Compute("id-1", 1, "purchase", 101, created, Genesis))
	assert.NotEqual(t, h1, Compute("id-1", 1, "purchase", 100, created.Add(time.Nanosecond), Genesis))
	assert.NotEqual(t, h1, Compute("id-1", 1, "purchase", 100, created, h2))
}

func TestCompute_TimezoneInsensitive(t *testing.T) {
	utc := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("UTC+3", 3*60*60))

	assert.Equal(t,
		Compute("id-1", 1, "purchase", 100, utc, Genesis),
		Compute("id-1", 1, "purchase", 100, offset, Genesis),
	)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		records   func() []Record
		valid     bool
		offending string
	}{
		{
			name:    "Empty chain is valid",
			records: func() []Record { return nil },
			valid:   true,
		},
		{
			name:    "Intact chain",
			records: func() []Record { return buildChain(1, 5) },
			valid:   true,
		},
		{
			name: "Tampered amount",
			records: func() []Record {
				records := buildChain(1, 5)
				records[2].Amount += 500
				return records
			},
			valid:     false,
			offending: "c-entry",
		},
		{
			name: "Broken linkage",
			records: func() []Record {
				records := buildChain(1, 5)
				records[3].PreviousHash = Genesis
				return records
			},
			valid:     false,
			offending: "d-entry",
		},
		{
			name: "Deleted record breaks the next one",
			records: func() []Record {
				records := buildChain(1, 5)
				return append(records[:1], records[2:]...)
			},
			valid:     false,
			offending: "c-entry",
		},
		{
			name: "First record must link to genesis",
			records: func() []Record {
				records := buildChain(1, 2)
				return records[1:]
			},
			valid:     false,
			offending: "b-entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, offending := Verify(tt.records())
			assert.Equal(t, tt.valid, valid)
			assert.Equal(t, tt.offending, offending)
		})
	}
}
