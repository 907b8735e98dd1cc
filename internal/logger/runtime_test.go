package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRID(t *testing.T) {
	assert.Equal(t, "42:100:7", BuildRID(42, 100, 7))
	assert.Equal(t, "0:0:0", BuildRID(0, 0, 0))
}

func TestRIDRoundTrip(t *testing.T) {
	ctx := WithRID(context.Background(), "1:2:3")
	assert.Equal(t, "1:2:3", RIDFrom(ctx))
	assert.Empty(t, RIDFrom(context.Background()))
}

func TestUpdateMetaRoundTrip(t *testing.T) {
	ctx := WithUpdateMeta(context.Background(), 10, 20, 30)
	assert.Equal(t, 10, UpdateIDFrom(ctx))
	assert.Equal(t, int64(20), UserIDFrom(ctx))
	assert.Equal(t, int64(30), ChatIDFrom(ctx))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "short", SanitizeLimit("short", 10))
	assert.Equal(t, "lon…", SanitizeLimit("longer", 3))
	assert.Equal(t, "two lines", SanitizeLimit("two\nlines", 20))
}
