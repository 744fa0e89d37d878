package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "json")
	log.Debug("hidden")
	log.Info("stock added", "code", "3005")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "stock added", rec["msg"])
	assert.Equal(t, "3005", rec["code"])
	assert.Equal(t, "paintstock", rec["app"])
}

func TestNew_DevText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "dev", "text")
	log.Debug("poll started")
	assert.Contains(t, buf.String(), "msg=\"poll started\"")
}
