// Package transcript assembles the ordered conversation log of one survey
// session. The assembler is a write-once log: records are appended in strict
// chronological order with a monotonically increasing sequence index and are
// never reordered or removed. The rendering layer consumes snapshots or a
// live subscription feed; business logic never reads the log.
package transcript

import (
	"sync"
	"time"

	"github.com/ParloraLabs/SurveyKit/types"
)

// subscriberBuffer is the per-subscriber channel depth. A slow subscriber
// misses records rather than blocking the conversation turn loop.
const subscriberBuffer = 64

// Assembler accumulates TurnRecords for one session.
// It is safe for concurrent use, though the engine appends from a single
// orchestrator goroutine.
type Assembler struct {
	mu      sync.Mutex
	records []types.TurnRecord
	nextSeq int
	subs    map[int]chan types.TurnRecord
	nextSub int
}

// NewAssembler creates an empty transcript assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		subs: make(map[int]chan types.TurnRecord),
	}
}

// AppendQuestion records the presentation of a question.
func (a *Assembler) AppendQuestion(q *types.Question, number int) types.TurnRecord {
	return a.append(types.TurnRecord{
		Kind:           types.TurnQuestion,
		Text:           q.DisplayText(),
		QuestionID:     q.ID,
		QuestionNumber: number,
	})
}

// AppendUserAnswer records an accepted respondent transcript.
func (a *Assembler) AppendUserAnswer(text string) types.TurnRecord {
	return a.append(types.TurnRecord{Kind: types.TurnUserAnswer, Text: text})
}

// AppendSympathy records an empathic acknowledgment.
func (a *Assembler) AppendSympathy(text string) types.TurnRecord {
	return a.append(types.TurnRecord{Kind: types.TurnSympathy, Text: text})
}

// AppendCompletion records the terminal completion message.
func (a *Assembler) AppendCompletion(text string) types.TurnRecord {
	return a.append(types.TurnRecord{Kind: types.TurnCompletion, Text: text})
}

// AppendMessage records a system message (retry prompts, errors).
func (a *Assembler) AppendMessage(text string) types.TurnRecord {
	return a.append(types.TurnRecord{Kind: types.TurnMessage, Text: text})
}

func (a *Assembler) append(rec types.TurnRecord) types.TurnRecord {
	a.mu.Lock()
	rec.Seq = a.nextSeq
	rec.Timestamp = time.Now()
	a.nextSeq++
	a.records = append(a.records, rec)

	for _, sub := range a.subs {
		select {
		case sub <- rec:
		default:
			// Subscriber is behind; it can recover from a snapshot.
		}
	}
	a.mu.Unlock()
	return rec
}

// Records returns a snapshot of the transcript in sequence order.
func (a *Assembler) Records() []types.TurnRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.TurnRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Len returns the number of appended records.
func (a *Assembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Subscribe returns a channel receiving records appended after the call, plus
// a cancel function that must be called to release the subscription.
func (a *Assembler) Subscribe() (<-chan types.TurnRecord, func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	ch := make(chan types.TurnRecord, subscriberBuffer)
	a.subs[id] = ch
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if sub, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(sub)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}
