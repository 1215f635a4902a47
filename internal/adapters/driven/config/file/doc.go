// Package file provides the TOML-backed configuration store.
//
// Keys are dot-separated ("sync.max_retries") in memory and written as
// nested TOML tables on disk, so the file stays hand-editable:
//
//	[sync]
//	max_retries = 3
//	conflict_strategy = "manual"
package file
