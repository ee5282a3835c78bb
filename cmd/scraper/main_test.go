package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/qepting91/weibo-scraper/internal/collector"
	"github.com/qepting91/weibo-scraper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithMock(t *testing.T) {
	var out bytes.Buffer

	corpus, err := run(context.Background(), collector.NewMockClient(5), "6651523309", &out)
	require.NoError(t, err)
	assert.Empty(t, corpus)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1024", lines[0])
	assert.Contains(t, lines[1], `"itemid":"1076036651523309_-_1000"`)
}

func TestRunPropagatesEmptyIdentifier(t *testing.T) {
	_, err := run(context.Background(), collector.NewMockClient(1), "", &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
}

func TestAppMockMode(t *testing.T) {
	t.Setenv("WEIBO_UID", "")
	t.Setenv("COLLECTOR_MODE", "")
	var stdout, stderr bytes.Buffer

	app := newApp(&stdout, &stderr)
	err := app.Run([]string{"scraper", "--mode", "mock", "--uid", "42", "--log-level", "disabled"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout.String(), "1024\n"))
	assert.Contains(t, stdout.String(), "10760342_-_1000")
	assert.Empty(t, stderr.String())
}

func TestAppRejectsBadMode(t *testing.T) {
	var stdout, stderr bytes.Buffer

	app := newApp(&stdout, &stderr)
	err := app.Run([]string{"scraper", "--mode", "api"})

	assert.ErrorContains(t, err, "unknown mode")
	assert.Empty(t, stdout.String())
}
