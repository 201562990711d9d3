package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PadsAndTruncatesRows(t *testing.T) {
	tbl := New("t", []string{"a", "b", "c"}, [][]string{
		{"1"},
		{"1", "2", "3", "4"},
	})

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[1])
}

func TestTable_RenameReturnsCopy(t *testing.T) {
	orig := New("t", []string{"Numero USP", "Nome"}, [][]string{{"1", "Ana"}})

	renamed := orig.Rename(map[string]string{"Numero USP": "nusp"})

	assert.Equal(t, []string{"nusp", "Nome"}, renamed.Columns)
	assert.Equal(t, []string{"Numero USP", "Nome"}, orig.Columns)
	assert.Equal(t, orig.Rows, renamed.Rows)
}

func TestTable_Column(t *testing.T) {
	tbl := New("t", []string{"a"}, [][]string{{"1"}, {"2"}})

	col, err := tbl.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, col)

	_, err = tbl.Column("b")
	assert.ErrorContains(t, err, `column "b" not found`)
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Número USP", "numero usp"},
		{"  NUSP ", "nusp"},
		{"n°   usp", "n° usp"},
		{"Semestre", "semestre"},
		{"Nome  Completo", "nome completo"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestTable_FindColumn(t *testing.T) {
	tbl := New("t", []string{"ANO", "Número USP"}, nil)

	assert.Equal(t, "ANO", tbl.FindColumn("Ano"))
	assert.Equal(t, "Número USP", tbl.FindColumn("numero usp"))
	assert.Equal(t, "", tbl.FindColumn("parecer"))
}
