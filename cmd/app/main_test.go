package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "database:\n  driver: sqlite\n  path: "+filepath.Join(dir, "test.db")+"\nlog:\n  level: error\n")
	venues := writeFile(t, dir, "venues.csv",
		"location_name,venue_name,capacity,personnel_required,open_time,close_time\n"+
			"Center,Hall,50,3,09:00,23:00\n"+
			"Center,Garden,80,2,10:00,22:00\n")
	personnel := writeFile(t, dir, "personnel.csv", "month,available_personnel\n2024-05,10\n")

	out, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	out, err = run(t, "--config", cfgPath, "import", "venues", venues)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows, 1 locations, 2 venues")

	out, err = run(t, "--config", cfgPath, "import", "personnel", personnel)
	require.NoError(t, err)
	assert.Contains(t, out, "1 personnel records")

	t.Run("seed without reset appends", func(t *testing.T) {
		out, err := run(t, "--config", cfgPath, "seed", "--venues", venues)
		require.NoError(t, err)
		assert.Contains(t, out, "0 locations, 2 venues")
	})

	t.Run("seed with reset starts over", func(t *testing.T) {
		out, err := run(t, "--config", cfgPath, "seed", "--reset", "--venues", venues, "--personnel", personnel)
		require.NoError(t, err)
		assert.Contains(t, out, "1 locations, 2 venues")
		assert.Contains(t, out, "1 personnel records")
	})

	t.Run("seed needs a file", func(t *testing.T) {
		_, err := run(t, "--config", cfgPath, "seed")
		assert.Error(t, err)
	})

	t.Run("bad csv fails", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.csv", "month,available_personnel\nMay,10\n")
		_, err := run(t, "--config", cfgPath, "import", "personnel", bad)
		assert.Error(t, err)
	})

	t.Run("missing config file fails", func(t *testing.T) {
		_, err := run(t, "--config", filepath.Join(dir, "nope.yaml"), "migrate")
		assert.Error(t, err)
	})
}
