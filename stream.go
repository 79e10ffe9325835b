package chatpod

import (
	"context"
	"unicode/utf8"
)

// chatTemperature is the fixed low-variance conversational temperature.
const chatTemperature = 0.7

// turnState carries per-turn bookkeeping that must survive retry attempts:
// the one-time welcome prefix, whether the user turn is already in the
// session, and the final answer for archiving.
type turnState struct {
	id      string
	userID  string
	text    string
	model   string
	welcome string
	answer  string

	appended bool
}

// streamAttempt drives exactly one upstream completion for the turn,
// emitting paced partial updates and, on completion, the final update. It
// appends the completed assistant turn and refreshes the session's activity
// timestamp. Upstream failures surface raw to the caller for classification.
func (r *Relay) streamAttempt(ctx context.Context, ts *turnState, out chan<- Update) error {
	if r.store.EnsureFresh(ts.userID) && ts.welcome == "" {
		ts.welcome = freshStartNotice
	}
	if !ts.appended {
		if err := r.store.Append(ts.userID, UserTurn(ts.text)); err != nil {
			return err
		}
		ts.appended = true
	}

	ts.model = r.defaultModel
	if r.store.Premium(ts.userID) {
		ts.model = r.premiumModel
	}
	history, err := r.store.History(ts.userID)
	if err != nil {
		return err
	}

	stream, err := r.llm.StreamChat(ctx, ts.model, history, chatTemperature)
	if err != nil {
		return err
	}
	defer stream.Close()

	interval := pacingInterval(ts.text)
	answer := ts.welcome
	lastEmitted := len(answer)
	finished := false

	for !finished && stream.Next() {
		delta := stream.Current()
		switch {
		case delta.Content != "":
			answer += delta.Content
			if insideCodeFence(answer) {
				continue
			}
			last, _ := utf8.DecodeLastRuneInString(answer)
			if readyToShow(len(answer)-lastEmitted, interval, last) {
				out <- Update{Kind: UpdatePartial, Text: answer}
				lastEmitted = len(answer)
			}
		case delta.FinishReason == "stop":
			finished = true
		}
		// Any other delta shape is ignored.
	}
	if err := stream.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		// The deadline fired while the stream stalled without closing.
		return err
	}
	if !finished {
		return errIncompleteStream
	}

	if err := r.store.Append(ts.userID, AssistantTurn(answer)); err != nil {
		return err
	}
	if err := r.store.Touch(ts.userID); err != nil {
		return err
	}
	ts.answer = answer
	out <- Update{Kind: UpdateFinal, Text: answer}
	return nil
}
