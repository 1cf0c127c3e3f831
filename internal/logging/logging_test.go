package logging

import (
	"bytes"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "debug", "json"))

	log.WithField("crop", "wheat").Info("accepted")
	require.Contains(t, buf.String(), `"crop":"wheat"`)
	require.Contains(t, buf.String(), `"message":"accepted"`)
}

func TestSetup_BadLevel(t *testing.T) {
	require.Error(t, Setup(&bytes.Buffer{}, "loud", "text"))
}
