// Package domain holds the entities of the review and engagement loop:
// learnable items and their memory state, review sessions, ratings, daily
// progress, streaks, bingo boards and boss round attempts. Constructors and
// Validate methods enforce the invariants; persistence and scheduling live
// elsewhere.
package domain
