package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	pg, err := sqlFiles(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, "001_row_cache", pg[0].version())
	assert.Contains(t, pg[0].body, "CREATE TABLE IF NOT EXISTS row_cache")

	ch, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	assert.Contains(t, ch[0].body, "CREATE TABLE IF NOT EXISTS pool_stats")

	for _, f := range ch {
		stmts, err := statements(f.body)
		require.NoError(t, err, f.name)
		assert.Len(t, stmts, 1, f.name)
	}
}

func TestStatements(t *testing.T) {
	input := `
-- leading comment; not a statement
CREATE TABLE a (x UInt8) ENGINE = Memory;

INSERT INTO a VALUES ('semi;colon'), ('it''s'); -- trailing
`
	stmts, err := statements(input)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('semi;colon'), ('it''s')", stmts[1])
}

func TestStatements_UnterminatedString(t *testing.T) {
	_, err := statements(`SELECT 'open`)
	assert.Error(t, err)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/telemetry")
	require.NoError(t, err)
	assert.Equal(t, "telemetry", db)

	_, err = databaseFromDSN("clickhouse://default@localhost:9000")
	assert.Error(t, err)

	_, err = databaseFromDSN("clickhouse://default@localhost:9000/x;DROP")
	assert.Error(t, err)
}
