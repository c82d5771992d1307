// Package engine runs the conversation pipeline for one user session.
//
// Each utterance flows through the same steps:
//
//  1. Cancel phrases clear any pending follow-up.
//  2. A pending follow-up gets the utterance first, unless the utterance
//     classifies as a different non-fallback intent with at least the
//     interrupt confidence; then the follow-up is dropped and the utterance
//     runs as a new request. Otherwise the merge outcome is
//     either dispatched (ready), re-prompted (still missing, failed to
//     parse) or turned into a narrowed candidate list.
//  3. Otherwise the utterance is classified, its slots are filled and the
//     intent is dispatched, or a follow-up begins when required slots are
//     missing.
//  4. The general conversation fallback goes to the chat responder.
//
// A Session serializes its turns: the pending follow-up and the undo log
// are never touched by two turns at once. Sessions are independent, so a
// Registry may serve many of them concurrently.
//
// Turns are numbered by a per-session counter carried in snapshots, so a
// restored session continues its numbering.
package engine
