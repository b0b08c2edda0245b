package stt

// Result is the normalized transcription response shape shared with clients.
//
// The channels/alternatives nesting follows Deepgram's response format; the
// transcribe endpoint returns this shape regardless of which upstream
// provider served the request so client code works unchanged.
type Result struct {
	Results ResultChannels `json:"results"`
}

// ResultChannels holds the per-channel transcription results.
type ResultChannels struct {
	Channels []Channel `json:"channels"`
}

// Channel is one audio channel's transcription alternatives.
type Channel struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is one candidate transcript for a channel.
type Alternative struct {
	Transcript string `json:"transcript"`
}

// NewResult wraps a plain transcript string in the normalized response shape.
func NewResult(transcript string) Result {
	return Result{
		Results: ResultChannels{
			Channels: []Channel{
				{Alternatives: []Alternative{{Transcript: transcript}}},
			},
		},
	}
}

// Transcript extracts the first channel's first alternative, or "" when the
// structure is empty.
func (r Result) Transcript() string {
	if len(r.Results.Channels) == 0 {
		return ""
	}
	ch := r.Results.Channels[0]
	if len(ch.Alternatives) == 0 {
		return ""
	}
	return ch.Alternatives[0].Transcript
}
