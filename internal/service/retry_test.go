package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsRetryableTxError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"deadlock detected", &pq.Error{Code: "40P01"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"wrapped serialization failure", fmt.Errorf("placeBidOnce: %w", &pq.Error{Code: "40001"}), true},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableTxError(tc.err); got != tc.want {
				t.Errorf("isRetryableTxError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
