package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/shared/testutil"
)

func errType(t *testing.T, err error) apierrors.ErrorType {
	t.Helper()
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr), "got %T: %v", err, err)
	return appErr.Type
}

func TestFileValidator_ValidateSpreadsheetName(t *testing.T) {
	v := NewFileValidator(0, testutil.DiscardLogger())

	tests := []struct {
		name          string
		file          string
		wantErr       bool
		errorContains string
	}{
		{name: "xlsx", file: "consolidado.xlsx"},
		{name: "upper case csv", file: "/tmp/REQUERIMENTOS.CSV"},
		{name: "legacy xls", file: "antigo.xls", wantErr: true, errorContains: "legacy .xls"},
		{name: "lock file", file: "~$consolidado.xlsx", wantErr: true, errorContains: "lock file"},
		{name: "pdf", file: "relatorio.pdf", wantErr: true, errorContains: "not a spreadsheet"},
		{name: "no extension", file: "dados", wantErr: true, errorContains: "not a spreadsheet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSpreadsheetName(tt.file)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Equal(t, apierrors.ErrTypeValidation, errType(t, err))
		})
	}
}

func TestFileValidator_ValidateSize(t *testing.T) {
	v := NewFileValidator(100, testutil.DiscardLogger())

	assert.NoError(t, v.ValidateSize("a.csv", 100))
	assert.ErrorContains(t, v.ValidateSize("a.csv", 101), "the limit is 100")
	assert.ErrorContains(t, v.ValidateSize("a.csv", 0), "is empty")

	unlimited := NewFileValidator(0, testutil.DiscardLogger())
	assert.NoError(t, unlimited.ValidateSize("a.csv", 1<<40))
}

func TestFileValidator_ValidateSpreadsheetFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "requerimentos.csv")
	require.NoError(t, os.WriteFile(good, []byte("nusp,Nome completo\n1,Ana\n"), 0644))
	wrongExt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(wrongExt, []byte("x"), 0644))
	big := filepath.Join(dir, "big.csv")
	require.NoError(t, os.WriteFile(big, make([]byte, 2048), 0644))

	v := NewFileValidator(1024, testutil.DiscardLogger())

	assert.NoError(t, v.ValidateSpreadsheetFile(good))
	assert.Equal(t, apierrors.ErrTypeNotFound, errType(t, v.ValidateSpreadsheetFile(filepath.Join(dir, "missing.xlsx"))))
	assert.Equal(t, apierrors.ErrTypeValidation, errType(t, v.ValidateSpreadsheetFile(dir)))
	assert.ErrorContains(t, v.ValidateSpreadsheetFile(wrongExt), "not a spreadsheet")
	assert.ErrorContains(t, v.ValidateSpreadsheetFile(big), "the limit is 1024")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(0, testutil.DiscardLogger())

	dir := filepath.Join(t.TempDir(), "exports", "2024")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err), "the write check leaves no file behind")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	err = v.ValidateOutputDirectory(filepath.Join(file, "sub"))
	assert.Equal(t, apierrors.ErrTypeStorage, errType(t, err))
}
