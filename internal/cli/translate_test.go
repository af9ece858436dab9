package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTranslate(t *testing.T, args []string, stdin string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewTranslateCommand()
	cmd.In = strings.NewReader(stdin)
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags(args))

	err := cmd.Run()
	return out.String(), err
}

func TestTranslateCommand_Flag(t *testing.T) {
	out, err := runTranslate(t, []string{"-sql", "INSERT INTO contacts (name, email) VALUES (?, ?)"}, "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "INSERT INTO contacts (name, email) VALUES ($1, $2) RETURNING id", lines[0])
	assert.Equal(t, "-- kind: insert, parameters: 2", lines[1])
}

func TestTranslateCommand_Stdin(t *testing.T) {
	out, err := runTranslate(t, []string{"-pk", "setting_key"},
		"  INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "INSERT INTO settings (setting_key, setting_value) VALUES ($1, $2) RETURNING setting_key\n"), out)
}

func TestTranslateCommand_WarnsAboutUnsupportedFunctions(t *testing.T) {
	out, err := runTranslate(t, []string{"-sql", "SELECT GROUP_CONCAT(title) FROM books WHERE author_id = ?"}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "-- kind: select, parameters: 1")
	assert.Contains(t, out, "-- warning: GROUP_CONCAT has no postgres rewrite")
}

func TestTranslateCommand_Empty(t *testing.T) {
	_, err := runTranslate(t, nil, "   \n")
	assert.ErrorContains(t, err, "no statement given")
}
