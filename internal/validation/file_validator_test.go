package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampledash/internal/shared/testutil"
)

func TestFileValidator_ValidateFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "readable file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.WriteFile(file, []byte(testutil.NumericCSV), 0644))
				return file
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger, 0)

			info, err := v.ValidateFile(tt.setupFunc(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(len(testutil.NumericCSV)), info.Size())
		})
	}
}

func TestFileValidator_ValidateUploadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger, 16)

	assert.NoError(t, v.ValidateUploadFile(write("small.csv", testutil.NumericCSV)))

	err := v.ValidateUploadFile(write("big.csv", strings.Repeat("1\n", 20)))
	require.ErrorIs(t, err, ErrTooLarge)
	testutil.AssertLogAttr(t, handler, "limit", int64(16))

	err = v.ValidateUploadFile(write("~$book.xlsx", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temporary Excel file")
}

func TestFileValidator_ValidateUploadFileWithoutLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("1\n", 1000)), 0644))

	assert.NoError(t, NewFileValidator(nil, 0).ValidateUploadFile(path))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil, 0)

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err), "probe file is removed")
}

func TestFileValidator_ValidateOutputDirectoryOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := NewFileValidator(nil, 0).ValidateOutputDirectory(file)
	require.Error(t, err)
}
