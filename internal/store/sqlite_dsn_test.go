package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "plain path",
			path: "urls.db",
			want: "urls.db?" + sqlitePragmas,
		},
		{
			name: "uri with a query",
			path: "file:urls.db?cache=shared",
			want: "file:urls.db?cache=shared&" + sqlitePragmas,
		},
		{
			name: "uri without a query",
			path: "file:urls.db",
			want: "file:urls.db?" + sqlitePragmas,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sqliteDSN(tt.path)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, strings.Count(got, "?"))
		})
	}
}
