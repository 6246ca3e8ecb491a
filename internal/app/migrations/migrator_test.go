package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "001_init.sql", want: "001"},
		{filename: "002_add_schedules.sql", want: "002"},
		{filename: "010_multi_word_name.sql", want: "010"},
		{filename: "noversion.sql", want: "noversion.sql"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, migrationVersion(tt.filename))
		})
	}
}
