package reconcile_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/reconcile"
	"reqcheck/internal/table"
)

func TestNormalizeKeyColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    []string
	}{
		{
			name:    "accented synonym",
			columns: []string{"Número USP", "Nome completo"},
			want:    []string{"nusp", "Nome completo"},
		},
		{
			name:    "upper case with padding",
			columns: []string{"Curso", "  NUSP  "},
			want:    []string{"Curso", "nusp"},
		},
		{
			name:    "degree sign spelling",
			columns: []string{"N° USP", "disciplina"},
			want:    []string{"nusp", "disciplina"},
		},
		{
			name:    "short synonym",
			columns: []string{"n usp"},
			want:    []string{"nusp"},
		},
		{
			name:    "keyword containment",
			columns: []string{"NUSP do aluno", "Nome"},
			want:    []string{"nusp", "Nome"},
		},
		{
			name:    "first match wins",
			columns: []string{"numero usp", "nusp antigo"},
			want:    []string{"nusp", "nusp antigo"},
		},
		{
			name:    "canonical label kept",
			columns: []string{"Numero USP", "nusp"},
			want:    []string{"Numero USP", "nusp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := table.New("input", tt.columns, [][]string{make([]string, len(tt.columns))})
			out, err := reconcile.NormalizeKeyColumn(in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Columns)
			assert.Equal(t, tt.columns, in.Columns, "input must not be modified")
			assert.Equal(t, in.Len(), out.Len())
		})
	}
}

func TestNormalizeKeyColumn_NotFound(t *testing.T) {
	in := table.New("requerimentos", []string{"Nome completo", "Curso"}, nil)

	_, err := reconcile.NormalizeKeyColumn(in)
	require.Error(t, err)

	var schemaErr *reconcile.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"nusp"}, schemaErr.Missing("requerimentos"))
	assert.Contains(t, err.Error(), "Nome completo, Curso")
}

func TestMarkHistoryColumns(t *testing.T) {
	in := table.New("consolidado",
		[]string{"nusp", "Disciplina", "ano", "Semestre", "problema", "parecer", "Observação"}, nil)

	marked := reconcile.MarkHistoryColumns(in)
	want := []string{
		"nusp", "disciplina_historico", "Ano_historico", "Semestre_historico",
		"problema_historico", "parecer_historico", "Observação",
	}
	assert.Equal(t, want, marked.Columns)

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, want, reconcile.MarkHistoryColumns(marked).Columns)
	})

	t.Run("partially marked", func(t *testing.T) {
		partial := table.New("consolidado", []string{"nusp", "disciplina_historico", "Ano"}, nil)
		assert.Equal(t, []string{"nusp", "disciplina_historico", "Ano_historico"},
			reconcile.MarkHistoryColumns(partial).Columns)
	})
}

func TestNormalizeNameColumn(t *testing.T) {
	in := table.New("requerimentos", []string{"nusp", " nome  COMPLETO "}, nil)
	assert.Equal(t, []string{"nusp", "Nome completo"}, reconcile.NormalizeNameColumn(in).Columns)

	missing := table.New("requerimentos", []string{"nusp", "Nome"}, nil)
	assert.Equal(t, []string{"nusp", "Nome"}, reconcile.NormalizeNameColumn(missing).Columns)
}
