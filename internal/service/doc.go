// Package service groups the application use cases. Each subpackage owns one
// area and depends only on domain types and the store interfaces:
//
//   - auth validates bearer tokens and mints development tokens.
//   - session opens, counts, ends and sweeps review sessions.
//   - review builds due queues and applies ratings to items.
//   - engagement tracks daily goals, streaks and the bingo board.
//   - boss_round selects and scores the daily challenge round.
//
// Services receive their dependencies through constructors, log through the
// context logger, and return sentinel errors that the API layer maps to
// HTTP statuses.
package service
