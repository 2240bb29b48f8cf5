package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"bankdemo/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.WithField("account_id", "acc-1").Info("account created")
	log.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "account created", entry["msg"])
	assert.Equal(t, "acc-1", entry["account_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&config.LogConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.Level)

	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLoggerErrors(t *testing.T) {
	_, err := New(&config.LogConfig{Level: "loud", Format: "json"}, nil)
	assert.Error(t, err)

	_, err = New(&config.LogConfig{Level: "info", Format: "xml"}, nil)
	assert.EqualError(t, err, `unknown log format "xml"`)
}
