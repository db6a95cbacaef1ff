package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	got, err := driverURL("postgres://app:secret@db:5432/erp?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://app:secret@db:5432/erp?sslmode=disable", got)

	got, err = driverURL("postgresql://db/erp")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://db/erp", got)

	_, err = driverURL("mysql://db/erp")
	assert.Error(t, err)
}
