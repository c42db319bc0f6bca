package database

import (
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := NormalizeDSN("shop:secret@tcp(db:3306)/solitaire")
	require.NoError(t, err)

	cfg, err := driver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "UTC", cfg.Loc.String())
	assert.Equal(t, "solitaire", cfg.DBName)
	assert.Equal(t, "db:3306", cfg.Addr)
}

func TestNormalizeDSN_OverridesLocation(t *testing.T) {
	dsn, err := NormalizeDSN("root@tcp(localhost:3306)/solitaire?parseTime=false&loc=Local")
	require.NoError(t, err)
	cfg, err := driver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "UTC", cfg.Loc.String())
}

func TestNormalizeDSN_MissingDatabase(t *testing.T) {
	_, err := NormalizeDSN("root@tcp(localhost:3306)/")
	assert.Error(t, err)
}

func TestNormalizeDSN_Invalid(t *testing.T) {
	_, err := NormalizeDSN("not a dsn")
	assert.Error(t, err)
}
