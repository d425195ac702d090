// Package challenge implements the exit challenge gating session stops.
//
// Three challenge types are supported: typing a configured phrase, solving a
// generated arithmetic problem, and a countdown of repeated confirmations.
// Answers are normalized (lowercased, whitespace stripped) before comparison
// and retries are unlimited.
package challenge
