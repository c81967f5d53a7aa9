package repo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablemaster/tablemaster/pkg/repo"
)

func TestInsert(t *testing.T) {
	q := repo.Insert("change_requests", []string{"user_id", "status"}, "id", "created_at")
	assert.Equal(t, "INSERT INTO change_requests (user_id, status) VALUES ($1, $2) RETURNING id, created_at", q)

	assert.Equal(t, "INSERT INTO tables DEFAULT VALUES RETURNING *", repo.Insert("tables", nil, "*"))
}

func TestUpdate(t *testing.T) {
	q := repo.Update("menu_items", []string{"name", "price"}, "id = $3")
	assert.Equal(t, "UPDATE menu_items SET name = $1, price = $2 WHERE id = $3", q)
}

func TestJoinAndWhere(t *testing.T) {
	q := repo.Join("SELECT * FROM guests", repo.JoinWhere("table_id = $1", "guest_number > 0"), "", repo.FormatLimitOffset(10, 0))
	assert.Equal(t, "SELECT * FROM guests WHERE table_id = $1 AND guest_number > 0 LIMIT 10", q)
	assert.Empty(t, repo.JoinWhere())
}

func TestFormatLimitOffset(t *testing.T) {
	assert.Equal(t, "LIMIT 5 OFFSET 10", repo.FormatLimitOffset(5, 10))
	assert.Equal(t, "OFFSET 3", repo.FormatLimitOffset(0, 3))
	assert.Empty(t, repo.FormatLimitOffset(0, 0))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "ORDER BY created_at, id ASC", repo.OrderBy([]string{"created_at", "id"}, repo.SortAsc))
	assert.Empty(t, repo.OrderBy(nil, repo.SortDesc))
}
