package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	readability "github.com/giulianopz/go-readerview"
	main "github.com/giulianopz/go-readerview/cmd/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html lang="en"><head><title>A page about testing command lines</title></head><body><article>
<p>The first paragraph is long enough to be kept, with a few commas, some words, and enough characters to matter later on.</p>
<p>The second paragraph is also long enough to be kept, with a few commas, some words, and enough characters to matter.</p>
<p>The third paragraph keeps going, with a few commas, some words, and enough characters to matter once they are summed up.</p>
<p>Another paragraph sneaks in before the last one, with a few commas, some words, and enough characters to be safe.</p>
<p>The last paragraph closes the article, with a few commas, some words, and a <a href="/more">link to more reading</a> at the end.</p>
</article></body></html>`

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))
	return path
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, nil, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "readability")
	assert.Contains(t, stdout.String(), "--output")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, nil, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_InvalidOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--output", "pdf", "-"}, strings.NewReader(page), &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_Text(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"-"}, strings.NewReader(page), &stdout, &stderr)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout.String(), "The first paragraph"))
	assert.Contains(t, stdout.String(), "\n\nThe second paragraph")
}

func TestMain_Run_HTMLFromFile(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"-o", "html", "--pretty", "--base-url", "http://fakehost/a/", writePage(t)}, nil, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), `id="readability-page-1"`)
	assert.Contains(t, stdout.String(), `href="http://fakehost/more"`)
}

func TestMain_Run_Markdown(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"-o", "markdown", "--base-url", "http://fakehost/", "-"}, strings.NewReader(page), &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "[link to more reading](http://fakehost/more)")
}

func TestMain_Run_JSON(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"-o", "json", "-"}, strings.NewReader(page), &stdout, &stderr)

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "A page about testing command lines", got["title"])
	assert.Equal(t, "en", got["language"])
	assert.Equal(t, true, got["isReadable"])
}

func TestMain_Run_Unreadable(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"-"}, strings.NewReader(`<p>nothing here</p>`), &stdout, &stderr)

	assert.ErrorIs(t, err, readability.ErrUnreadable)
	assert.Empty(t, stdout.String())
}

func TestMain_Run_MissingFile(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope.html")}, nil, &stdout, &stderr)

	assert.ErrorContains(t, err, "read input")
}
