package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSQL(t *testing.T) {
	got, err := UpsertSQL(UpsertConfig{
		Table:        "locations",
		Columns:      []string{"id", "name", "state"},
		ConflictKeys: []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "locations" ("id", "name", "state") VALUES ($1, $2, $3) ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name", "state" = EXCLUDED."state"`,
		got)
}

func TestUpsertSQL_ExplicitUpdateCols(t *testing.T) {
	got, err := UpsertSQL(UpsertConfig{
		Table:        "public.locations",
		Columns:      []string{"id", "name", "votes"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"votes"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."locations" ("id", "name", "votes") VALUES ($1, $2, $3) ON CONFLICT ("id") DO UPDATE SET "votes" = EXCLUDED."votes"`,
		got)
}

func TestUpsertSQL_OnlyKeys(t *testing.T) {
	got, err := UpsertSQL(UpsertConfig{
		Table:        "tags",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "tags" ("id") VALUES ($1) ON CONFLICT ("id") DO NOTHING`, got)
}

func TestUpsertSQL_NoColumns(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{
		Table:        "locations",
		ConflictKeys: []string{"id"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestUpsertSQL_NoConflictKeys(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{
		Table:   "locations",
		Columns: []string{"id", "name"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.locations", `"public"."locations"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}
