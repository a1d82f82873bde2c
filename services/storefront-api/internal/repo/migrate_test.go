package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, "001_init", ms[0].Version)

	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}

	schema := ms[0].SQL
	for _, table := range []string{"users", "products", "orders", "order_items", "outbox_events"} {
		assert.Contains(t, schema, "create table if not exists "+table+" ")
	}
	assert.Contains(t, schema, "on delete set null")
}
