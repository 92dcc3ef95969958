// Package profile keeps the local working copy of a user's profile in step
// with the hosted record store.
//
// The Synchronizer bootstraps a missing profile on first load, resolves the
// avatar display URL, and pushes field and avatar edits. Local state only
// ever changes to a result acknowledged by the store; a failed write leaves
// the last-known-good copy in place.
//
// # States
//
//	Idle -> Saving    -> Idle   (UpdateFields, success or failure)
//	Idle -> Uploading -> Idle   (UpdateAvatar, success or failure)
//
// At most one field update and one avatar upload run at a time; a second
// concurrent request of the same kind fails with common.ErrBusy.
package profile
