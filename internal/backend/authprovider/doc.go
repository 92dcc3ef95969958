// Package authprovider is the client's auth provider backed by the hosted
// Postgres database.
//
// Passwords are hashed with argon2id. A session is a short-lived HS256
// access token plus an opaque refresh token that rotates on every refresh;
// both are persisted in the local metadata store so a restarted client
// resumes the session. Every change of the current session is announced to
// subscribers, in order, while the provider's lock is held: handlers must
// not call back into the Provider.
//
// Account flows (sign-up confirmation, password reset) use one-time action
// tokens delivered through a mailer.
package authprovider
