package chatpod

import "strings"

// pauseMarks are the sentence and clause boundaries, half-width and
// full-width, at which a partial answer reads as complete enough to show.
const pauseMarks = ".!?;:。！？；："

const (
	minPacingInterval = 20
	maxPacingInterval = 50
)

// pacingInterval derives the minimum character growth between partial
// updates from the prompt length: short prompts get snappier updates, long
// prompts throttle edit traffic.
func pacingInterval(userMessage string) int {
	n := len(userMessage) / 5
	if n < minPacingInterval {
		return minPacingInterval
	}
	if n > maxPacingInterval {
		return maxPacingInterval
	}
	return n
}

// readyToShow decides whether a growing answer is worth surfacing: it must
// have grown past the pacing interval and end on a boundary mark. It never
// alters content, only gates when a partial is emitted.
func readyToShow(grown, interval int, last rune) bool {
	return grown > interval && strings.ContainsRune(pauseMarks, last)
}

// insideCodeFence reports whether the buffer currently sits inside an open
// triple-backtick fence. Partials are suppressed there so a code block is
// never split mid-render.
func insideCodeFence(buf string) bool {
	return strings.Count(buf, "```")%2 == 1
}
