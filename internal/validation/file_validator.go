package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apierrors "reqcheck/internal/errors"
)

// SpreadsheetExtensions are the accepted input file extensions.
var SpreadsheetExtensions = []string{".xlsx", ".csv"}

// FileValidator provides the file checks shared by the HTTP upload handler
// and the command line
type FileValidator struct {
	maxSize int64
	logger  *slog.Logger
}

// NewFileValidator creates a new file validator. maxSize <= 0 disables the
// size check.
func NewFileValidator(maxSize int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		maxSize: maxSize,
		logger:  logger,
	}
}

// ValidateSpreadsheetName checks that name looks like an accepted input file.
func (v *FileValidator) ValidateSpreadsheetName(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejected temporary Excel file",
			slog.String("file", name))
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a temporary Excel lock file", base)).
			WithContext("file", base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == ".xls" {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s: legacy .xls workbooks are not supported, save the file as .xlsx", base)).
			WithContext("file", base)
	}
	if !slices.Contains(SpreadsheetExtensions, ext) {
		v.logger.Warn("Rejected file with unsupported extension",
			slog.String("file", name),
			slog.String("extension", ext))
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is not a spreadsheet (accepted: %s)", base, strings.Join(SpreadsheetExtensions, ", "))).
			WithContext("file", base).
			WithContext("extension", ext)
	}
	return nil
}

// ValidateSize checks size against the configured limit.
func (v *FileValidator) ValidateSize(name string, size int64) error {
	if size == 0 {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is empty", filepath.Base(name))).
			WithContext("file", filepath.Base(name))
	}
	if v.maxSize > 0 && size > v.maxSize {
		v.logger.Warn("Rejected oversized file",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxSize))
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is %d bytes, the limit is %d", filepath.Base(name), size, v.maxSize)).
			WithContext("file", filepath.Base(name)).
			WithContext("max_size", v.maxSize)
	}
	return nil
}

// ValidateSpreadsheetFile checks a local input file: it must exist, be
// readable, carry an accepted extension and respect the size limit.
func (v *FileValidator) ValidateSpreadsheetFile(path string) error {
	info, err := v.ValidateFile(path)
	if err != nil {
		return err
	}
	if err := v.ValidateSpreadsheetName(path); err != nil {
		return err
	}
	return v.ValidateSize(path, info.Size())
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, apierrors.NewNotFoundError(path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return nil, apierrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, apierrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
