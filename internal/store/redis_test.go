package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanKeys(t *testing.T) {
	t.Parallel()

	type page struct {
		keys []string
		next uint64
	}

	tests := []struct {
		name    string
		pages   map[uint64]page
		failAt  uint64
		want    int
		wantErr bool
	}{
		{
			name: "single batch",
			pages: map[uint64]page{
				0: {keys: []string{"a", "b"}},
			},
			want: 2,
		},
		{
			name: "key returned in two batches counted once",
			pages: map[uint64]page{
				0: {keys: []string{"a", "b"}, next: 7},
				7: {keys: []string{"b", "c"}, next: 9},
				9: {keys: []string{"a"}},
			},
			want: 3,
		},
		{
			name:  "empty",
			pages: map[uint64]page{0: {}},
			want:  0,
		},
		{
			name: "error keeps keys seen so far",
			pages: map[uint64]page{
				0: {keys: []string{"a"}, next: 3},
			},
			failAt:  3,
			want:    1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			keys, err := scanKeys(func(cursor uint64) ([]string, uint64, error) {
				if tt.failAt != 0 && cursor == tt.failAt {
					return nil, 0, errors.New("connection reset")
				}
				p, ok := tt.pages[cursor]
				require.True(t, ok, "unexpected cursor %d", cursor)
				return p.keys, p.next, nil
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, keys, tt.want)
		})
	}
}
