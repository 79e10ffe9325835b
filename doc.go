// Package chatpod relays user messages to a remote chat-completion service
// and streams back incrementally revealed answers, while holding a private,
// in-memory conversation session per user.
//
// The pipeline for one turn is: per-user serialization, process-wide
// throttle admission, then a bounded retry loop around a streaming
// aggregator that paces partial answers and recovers from context-length,
// overload, and timeout failures. Sessions reset automatically after 24
// hours of inactivity; completed turns can optionally be archived to SQLite
// or Postgres.
package chatpod
