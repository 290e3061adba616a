package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, log.Level)

	log.WithField("component", "test").Debug("hello")
	assert.Contains(t, buf.String(), "component=test")
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("loud", &buf)
	assert.Equal(t, logrus.InfoLevel, log.Level)
	assert.Contains(t, buf.String(), "unknown log level")
}
