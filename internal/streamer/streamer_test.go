package streamer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func collect(ch <-chan Chunk) []Chunk {
	var chunks []Chunk
	for c := range ch {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestStreamReconstructsText(t *testing.T) {
	e := NewEmulator(0)

	chunks := collect(e.Stream(context.Background(), "a b c"))

	assert.Len(t, chunks, 3)

	var b strings.Builder
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		b.WriteString(c.Content)
	}
	assert.Equal(t, "a b c", b.String())

	// Only the final chunk is marked last.
	assert.False(t, chunks[0].Last)
	assert.False(t, chunks[1].Last)
	assert.True(t, chunks[2].Last)
}

func TestStreamSingleWord(t *testing.T) {
	e := NewEmulator(0)

	chunks := collect(e.Stream(context.Background(), "Hello"))

	assert.Len(t, chunks, 1)
	assert.Equal(t, "Hello", chunks[0].Content)
	assert.True(t, chunks[0].Last)
}

func TestStreamEmptyText(t *testing.T) {
	e := NewEmulator(0)

	chunks := collect(e.Stream(context.Background(), "   "))
	assert.Empty(t, chunks)
}

func TestStreamTrailingSpaces(t *testing.T) {
	e := NewEmulator(0)

	chunks := collect(e.Stream(context.Background(), "one two"))

	assert.Equal(t, "one ", chunks[0].Content)
	assert.Equal(t, "two", chunks[1].Content)
}

func TestStreamCancellation(t *testing.T) {
	e := NewEmulator(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	ch := e.Stream(ctx, "a b c d e f g h")

	// Take the first chunk, then cancel.
	first, ok := <-ch
	assert.True(t, ok)
	assert.Equal(t, 0, first.Index)
	cancel()

	var rest []Chunk
	for c := range ch {
		rest = append(rest, c)
	}
	// Emission stops well short of the full word count.
	assert.Less(t, len(rest), 7)
}

func TestStreamChannelCloses(t *testing.T) {
	e := NewEmulator(0)

	ch := e.Stream(context.Background(), "done")
	<-ch

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must be closed after the last chunk")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}
