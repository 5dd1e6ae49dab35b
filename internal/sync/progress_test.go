package sync

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

func TestNewProgressRenderer_DisabledForParallelPools(t *testing.T) {
	// Parallel workers would interleave in-place lines; the renderer only
	// exists for sequential runs (and only on a TTY, which tests never are).
	assert.Nil(t, NewProgressRenderer(4))
}

func TestProgressRenderer_NilSafe(t *testing.T) {
	var p *progressRenderer

	var sink bytes.Buffer
	w := p.wrap(&sink, vault.FileRecord{})
	p.done()

	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", sink.String())
}

func TestProgressWriter_RendersPercentWhenSizeKnown(t *testing.T) {
	var file, screen bytes.Buffer

	pw := &progressWriter{
		w:     &file,
		out:   &screen,
		total: 100,
		start: time.Now().Add(-time.Second),
	}

	_, err := pw.Write(make([]byte, 50))
	require.NoError(t, err)

	assert.Contains(t, screen.String(), "50.0%")
	assert.Equal(t, 50, file.Len())
}

func TestProgressWriter_RendersBytesWhenSizeUnknown(t *testing.T) {
	var file, screen bytes.Buffer

	pw := &progressWriter{
		w:     &file,
		out:   &screen,
		start: time.Now().Add(-time.Second),
	}

	_, err := pw.Write(make([]byte, 1024))
	require.NoError(t, err)

	assert.True(t, strings.Contains(screen.String(), "Downloaded:"))
}
