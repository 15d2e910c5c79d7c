// Package sqlite is the modernc.org/sqlite driver for the audit trail when it
// is kept in its own file instead of the main postgres database.
package sqlite
