// Package stt converts captured audio segments to text.
//
// It defines a provider-agnostic Service interface, adapters for OpenAI
// Whisper and Deepgram that normalize the two providers' different response
// shapes into a plain transcript string, and a Gateway that performs ordered
// primary-then-secondary fallback with a bounded timeout on the primary call.
package stt
