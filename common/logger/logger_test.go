package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}, buf
}

func TestWithCIDAndAccountAttachFields(t *testing.T) {
	log, buf := captureLogger()

	log.WithCID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG").
		WithAccount("0x8ba1f109551bD432803012645Ac136ddd64DBA72").
		Info("decrypt complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", entry["cid"])
	assert.Equal(t, "0x8ba1f109551bD432803012645Ac136ddd64DBA72", entry["account"])
	assert.Equal(t, "decrypt complete", entry["msg"])
}

func TestWithCIDDoesNotMutateParent(t *testing.T) {
	log, buf := captureLogger()

	log.WithCID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	log.Info("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "cid")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
