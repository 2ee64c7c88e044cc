package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToWarnText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := New("", "", &out)
	require.NoError(t, err)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.WithField("path", "/api/tasks").Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "path=/api/tasks")
}

func TestNewJSONFormat(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := New("debug", "json", &out)
	require.NoError(t, err)

	logger.WithField("request_id", "01ABC").Debug("request")

	var line map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	assert.Equal(t, "01ABC", line["request_id"])
	assert.Equal(t, "debug", line["level"])
}

func TestNewRejectsUnknownValues(t *testing.T) {
	t.Parallel()

	_, err := New("chatty", "", nil)
	require.Error(t, err)

	_, err = New("info", "xml", nil)
	require.Error(t, err)
}
