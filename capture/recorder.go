package capture

import (
	"context"
	"errors"
	"sync"
)

// ErrNoAudioCaptured is returned when a recording stops without producing
// any audio data.
var ErrNoAudioCaptured = errors.New("no audio captured")

// Segment is one finalized audio capture.
type Segment struct {
	// Data is the raw encoded audio.
	Data []byte

	// ContentType is the MIME type of the encoding, e.g. "audio/webm;codecs=opus".
	ContentType string
}

// Recorder abstracts the audio source feeding the capture machine.
// Implementations wrap a browser media stream relay, a local microphone, or a
// test fixture.
type Recorder interface {
	// Start begins capturing a new segment.
	Start(ctx context.Context) error

	// Stop finalizes and returns the captured segment.
	Stop(ctx context.Context) (Segment, error)
}

// MemoryRecorder buffers pushed audio chunks between Start and Stop.
// It suits sources that relay encoded chunks (e.g. a websocket microphone
// feed) and is also used as the test fixture recorder.
type MemoryRecorder struct {
	mu          sync.Mutex
	contentType string
	buf         []byte
	active      bool
}

// NewMemoryRecorder creates a recorder producing segments with the given
// content type.
func NewMemoryRecorder(contentType string) *MemoryRecorder {
	return &MemoryRecorder{contentType: contentType}
}

// Start begins a new capture, discarding any previous buffer.
func (r *MemoryRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = nil
	r.active = true
	return nil
}

// Push appends an audio chunk to the in-progress capture.
// Chunks pushed while no capture is active are dropped.
func (r *MemoryRecorder) Push(chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.buf = append(r.buf, chunk...)
}

// Stop finalizes the capture and returns the buffered segment.
func (r *MemoryRecorder) Stop(_ context.Context) (Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	if len(r.buf) == 0 {
		return Segment{}, ErrNoAudioCaptured
	}
	seg := Segment{Data: r.buf, ContentType: r.contentType}
	r.buf = nil
	return seg, nil
}
