package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/store"
)

func TestSetsCmd_Empty(t *testing.T) {
	// Given: no store on disk
	dir := t.TempDir()

	// When: listing sets
	out, err := runCLI(t, dir, "", "sets")

	// Then: nothing is listed and no store is created
	require.NoError(t, err)
	assert.Contains(t, out, "No stored synonym sets")
	assert.NoFileExists(t, filepath.Join(dir, ".synmap", "synonyms.db"))
}

func TestSetsCmd_ListAndRemove(t *testing.T) {
	// Given: two stored sets
	dir := t.TempDir()
	db := filepath.Join(dir, "edges.db")
	rules := writeFile(t, dir, "rules.txt", "plz, plaza|str, strasse\n")
	_, err := runCLI(t, dir, "", "compile", rules, "--name", "places", "--db", db)
	require.NoError(t, err)
	_, err = runCLI(t, dir, "", "compile", rules, "--expand", "--name", "expanded", "--db", db)
	require.NoError(t, err)

	// When: listing as JSON
	out, err := runCLI(t, dir, "", "sets", "--db", db, "--json")
	require.NoError(t, err)

	// Then: both are listed by name
	var sets []store.SetSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sets), out)
	require.Len(t, sets, 2)
	assert.Equal(t, "expanded", sets[0].Name)
	assert.True(t, sets[0].Options.Expand)
	assert.Equal(t, "places", sets[1].Name)
	assert.Equal(t, 4, sets[1].EdgeCount)

	// When: removing one
	out, err = runCLI(t, dir, "", "sets", "rm", "places", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted "places"`)

	// Then: the text listing only has the other
	out, err = runCLI(t, dir, "", "sets", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "expanded")
	assert.NotContains(t, out, "places")

	// And: removing it again fails
	_, err = runCLI(t, dir, "", "sets", "rm", "places", "--db", db)
	require.Error(t, err)
	assert.True(t, synerr.HasCode(err, synerr.ErrCodeUnknownSet))
}

func TestSetsCmd_EmptyJSON(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "", "sets", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}
