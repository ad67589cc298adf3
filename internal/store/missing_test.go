package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingPages(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		recorded   []int
		want       []int
	}{
		{"nothing recorded", 3, nil, []int{1, 2, 3}},
		{"gaps in the middle", 5, []int{1, 3, 4}, []int{2, 5}},
		{"fully recorded", 4, []int{1, 2, 3, 4}, nil},
		{"records beyond the page count are ignored", 2, []int{1, 2, 7}, nil},
		{"zero pages", 0, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorded := make(map[int]bool, len(tt.recorded))
			for _, p := range tt.recorded {
				recorded[p] = true
			}
			assert.Equal(t, tt.want, MissingPages(tt.totalPages, recorded))
		})
	}
}
