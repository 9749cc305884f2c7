// Package authclient is the client-side counterpart to a cookie-session
// registration-and-approval backend. It owns the authentication lifecycle on
// behalf of an embedding application:
//
// Session lifecycle:
//   - SessionManager tracks the current Identity, bootstraps it once per
//     process, refreshes it against the server, and distinguishes a definitive
//     "not authenticated" answer (clears state) from a transport failure
//     (preserves state). Readers observe identity changes through Subscribe.
//   - IdentityStore mirrors the last-known Identity into durable local storage
//     so a restart can present a best-effort identity before the first status
//     round trip resolves. The cache is a hint, never an authority.
//
// Signup gate:
//   - SignupGate runs the OTP email-verification machine (UNSENT, SENT,
//     VERIFIED, FAILED) that guards account creation. A verified code is bound
//     to the exact email it was issued for; editing the email invalidates it.
//
// Keep-alive:
//   - Heartbeat pings the status endpoint on a fixed period while a session is
//     active, and re-validates the identity on a second independent period.
//     Both loops stop deterministically when the session ends.
package authclient
