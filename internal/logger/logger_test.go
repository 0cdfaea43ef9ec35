package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("InvalidLevel", func(t *testing.T) {
		log, err := NewLogger("loud", "console", "")
		assert.Error(t, err)
		assert.Nil(t, log)
	})

	t.Run("JSONToFile", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "form1325.log")
		log, err := NewLogger("debug", "json", file)
		require.NoError(t, err)

		log.Info("Output file ready")
		_ = log.Sync()

		content, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"Output file ready"`)
	})
}
