// Package streamer synthesizes an incremental chunk stream from a complete
// generation result. The upstream API returns the whole text in one shot,
// so "streaming" here means re-segmenting that text after generation has
// finished; the full text is always available before the first chunk is
// emitted.
package streamer

import (
	"context"
	"strings"
	"time"
)

// Chunk is one ordered fragment of the final answer text. Last is set only
// on the final fragment and selects the terminal finish reason downstream.
type Chunk struct {
	Index   int
	Content string
	Last    bool
}

// Emulator re-segments a completed text into word-sized chunks. Delay, when
// non-zero, paces emission between chunks; it is presentation only and has
// no bearing on correctness, so tests run it at zero.
type Emulator struct {
	Delay time.Duration
}

// NewEmulator creates an Emulator with the given inter-chunk delay.
func NewEmulator(delay time.Duration) *Emulator {
	return &Emulator{Delay: delay}
}

// Stream splits text on whitespace and emits one chunk per word, in order,
// on the returned channel. Every chunk except the last gets a single
// trailing space so that concatenating all chunk contents reconstructs the
// spacing of the original text. The channel is closed after the last chunk;
// the close is the terminal marker. The sequence is produced exactly once
// and is not restartable. Cancelling ctx stops emission.
func (e *Emulator) Stream(ctx context.Context, text string) <-chan Chunk {
	ch := make(chan Chunk)

	go func() {
		defer close(ch)

		words := strings.Fields(text)
		for i, word := range words {
			content := word
			last := i == len(words)-1
			if !last {
				content += " "
			}

			select {
			case <-ctx.Done():
				return
			case ch <- Chunk{Index: i, Content: content, Last: last}:
			}

			if e.Delay > 0 && !last {
				select {
				case <-ctx.Done():
					return
				case <-time.After(e.Delay):
				}
			}
		}
	}()

	return ch
}
