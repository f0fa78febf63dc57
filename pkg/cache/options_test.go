package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOptions(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    Options
		wantErr bool
	}{
		{
			name: "nil map uses defaults",
			raw:  nil,
			want: Options{Size: defaultSize, Prefix: defaultKeyPrefix},
		},
		{
			name: "duration strings and weak ints",
			raw:  map[string]any{"size": "50", "ttl": "30s", "address": "localhost:6379", "db": 2},
			want: Options{Size: 50, TTL: 30 * time.Second, Address: "localhost:6379", DB: 2, Prefix: defaultKeyPrefix},
		},
		{
			name: "custom prefix",
			raw:  map[string]any{"prefix": "app:"},
			want: Options{Size: defaultSize, Prefix: "app:"},
		},
		{
			name:    "unknown key",
			raw:     map[string]any{"sise": 10},
			wantErr: true,
		},
		{
			name:    "bad duration",
			raw:     map[string]any{"ttl": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeOptions(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Size, got.Size)
			assert.Equal(t, tt.want.TTL, got.TTL)
			assert.Equal(t, tt.want.Address, got.Address)
			assert.Equal(t, tt.want.DB, got.DB)
			assert.Equal(t, tt.want.Prefix, got.Prefix)
		})
	}
}
