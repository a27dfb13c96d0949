// Package database implements the dictionary store on top of SQLite.
//
// All bulk writes go through an exclusive import handle obtained from
// Database.Open; at most one handle may be live at a time and a second
// Open fails with ErrStoreBusy. Reads (stats, dictionary listings) do
// not require a handle.
package database
