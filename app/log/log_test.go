package log

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerJSON(t *testing.T) {
	defer InitLogger("info", "text", os.Stderr)

	var buf bytes.Buffer
	InitLogger("debug", "json", &buf)
	Log.WithField("post_id", 7).Debug("post created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "post created", line["msg"])
	assert.Equal(t, "yatube", line["service"])
	assert.EqualValues(t, 7, line["post_id"])
}

func TestInitLoggerLevel(t *testing.T) {
	defer InitLogger("info", "text", os.Stderr)

	var buf bytes.Buffer
	InitLogger("nonsense", "text", &buf)
	assert.Equal(t, logrus.InfoLevel, Log.Logger.GetLevel())

	Log.Debug("hidden")
	assert.Empty(t, buf.String())
}
