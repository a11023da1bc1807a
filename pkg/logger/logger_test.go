package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mathmusci/optivenue/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&config.LogConfig{Level: "debug", Format: "json"}, &buf))
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	logrus.WithField("venue_id", 7).Debug("checked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "checked", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 7, entry["venue_id"])
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&config.LogConfig{Level: "warn", Format: "text"}, &buf))
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	logrus.Info("hidden")
	logrus.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestSetupRejectsBadInput(t *testing.T) {
	assert.Error(t, Setup(&config.LogConfig{Level: "loud"}, nil))
	assert.Error(t, Setup(&config.LogConfig{Level: "info", Format: "xml"}, nil))
}
