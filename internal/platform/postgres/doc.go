// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. Read-modify-write operations on items and
// streaks lock the row with SELECT ... FOR UPDATE inside a transaction;
// counters and board cells are updated with single conditional statements.
// Driver errors are translated to store sentinels by MapError.
//
// The schema lives in the embedded goose migrations.
package postgres
