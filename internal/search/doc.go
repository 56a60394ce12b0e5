// Package search coordinates incremental, search-as-you-type lookups.
//
// A Coordinator owns one "current query" slot. Keystrokes are debounced,
// each emitted query receives a strictly increasing RequestID, and the
// provider runs on its own goroutine. When an answer comes back it is
// handed to the Presenter only if its RequestID is still the current one,
// so a slow answer to an old keystroke can never overwrite the answer to a
// newer one.
//
// All coordinator state lives on a single loop goroutine. Public methods
// post commands to that loop; provider answers are marshalled back to it
// over a channel before the gate comparison. No lock guards the current id.
package search
