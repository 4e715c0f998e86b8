package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		url        string
		wantName   string
		wantSQLite bool
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "postgres", false},
		{"postgresql://localhost/db", "postgres", false},
		{"sqlite://hr_parlay.db", "sqlite", true},
		{":memory:", "sqlite", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, isSQLite := dialectorFor(tt.url)
			assert.Equal(t, tt.wantName, d.Name())
			assert.Equal(t, tt.wantSQLite, isSQLite)
		})
	}
}

func TestNewConnectionInMemory(t *testing.T) {
	db, err := NewConnection(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
