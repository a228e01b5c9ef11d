package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Jane Doe", want: "jane doe"},
		{input: "  jane   DOE ", want: "jane doe"},
		{input: "JANE\tDOE", want: "jane doe"},
		{input: "", want: ""},
		{input: "   ", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.input))
	}
}

func TestPeriodsOverlap(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad date %s: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{name: "contained", aStart: "2024-01-01", aEnd: "2024-03-01", bStart: "2024-01-15", bEnd: "2024-02-15", want: true},
		{name: "partial overlap", aStart: "2024-01-01", aEnd: "2024-03-01", bStart: "2024-02-15", bEnd: "2024-04-15", want: true},
		{name: "touching endpoints", aStart: "2024-01-01", aEnd: "2024-03-01", bStart: "2024-03-01", bEnd: "2024-05-01", want: true},
		{name: "adjacent", aStart: "2024-01-01", aEnd: "2024-03-01", bStart: "2024-03-02", bEnd: "2024-05-01", want: false},
		{name: "disjoint", aStart: "2024-01-01", aEnd: "2024-02-01", bStart: "2024-06-01", bEnd: "2024-07-01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodsOverlap(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd))
			assert.Equal(t, tt.want, got)
			// Overlap is symmetric.
			assert.Equal(t, tt.want, PeriodsOverlap(day(tt.bStart), day(tt.bEnd), day(tt.aStart), day(tt.aEnd)))
		})
	}
}
