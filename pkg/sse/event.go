// Package sse parses Server-Sent Events from a completion stream.
//
// Only the reading side is provided. See
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// DoneData is the data payload that terminates an OpenAI-style completion stream.
const DoneData = "[DONE]"

// Event is a single parsed SSE event, delimited by a blank line.
type Event struct {
	// Type is the "event:" field. Empty means the default "message" type.
	Type string

	// Data holds every "data:" line of the event joined with "\n".
	Data string

	// ID is the last "id:" field, if present.
	ID string
}

// IsDone reports whether the event is the stream terminator.
func (e *Event) IsDone() bool {
	return e != nil && e.Data == DoneData
}
