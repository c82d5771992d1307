// Package harness runs scripted conversations against the command engine.
//
// A scenario replays a list of turns through one session backed by an
// in-memory record store and a frozen clock, checks each turn's result
// against an optional expect clause, and evaluates assertions over the
// final records.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: book-appointment
//	description: "Collect every appointment slot across turns"
//	now: "2026-10-17T15:04:00Z"
//	current_week: 12
//	setup:
//	  - category: appointment
//	    fields: { title: checkup, date: "2026-10-18", time: "10:00" }
//	turns:
//	  - say: make an appointment
//	    expect:
//	      requires_follow_up: true
//	      missing: [title, date, time, location]
//	  - undo: true
//	assertions:
//	  - type: record_count
//	    category: appointment
//	    count: 1
//	  - type: record_exists
//	    category: appointment
//	    where: { title: dr smith }
//	  - type: no_pending
//
// Unknown fields are rejected so typos fail loudly.
//
// # Assertion Types
//
//   - record_count: Exactly count records of category exist
//   - record_exists: Some record of category has every field in where
//   - no_pending: The session has no live follow-up
//
// # Deterministic Testing
//
// Relative dates resolve against the scenario's now (default
// 2026-10-17T15:04:00Z), record ids start at 1 per category and session and
// undo ids come from a sequence generator. Transcripts are therefore stable
// and can be compared with golden files (see RunWithGolden).
package harness
