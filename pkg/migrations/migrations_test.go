package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlmigrations "github.com/tablemaster/tablemaster/migrations"
	"github.com/tablemaster/tablemaster/pkg/migrations"
)

func TestRunner_FilesInOrder(t *testing.T) {
	files, err := migrations.NewRunner(sqlmigrations.FS, nil).Files()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Contains(t, files[0], "00001_floor.sql")
	assert.Contains(t, files[1], "00002_menu.sql")
	assert.Contains(t, files[2], "00003_requests.sql")
}
