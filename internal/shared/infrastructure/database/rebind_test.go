package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"sequential", "SELECT * FROM tasks WHERE user_id = ? AND id = ?", "SELECT * FROM tasks WHERE user_id = $1 AND id = $2"},
		{"quoted literal untouched", "SELECT '?' , ? FROM t", "SELECT '?' , $1 FROM t"},
		{"upsert", "INSERT INTO streaks (user_id, current) VALUES (?, ?) ON CONFLICT (user_id) DO UPDATE SET current = excluded.current",
			"INSERT INTO streaks (user_id, current) VALUES ($1, $2) ON CONFLICT (user_id) DO UPDATE SET current = excluded.current"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.query))
		})
	}
}
