// Package flow implements the client-side authentication state machines
// used by Meridian frontends: login with its MFA branch, six-cell OTP
// entry, the three-stage signup wizard, and the password-reset and
// email-verification token flows.
//
// Each flow is a self-contained, mutex-guarded struct driven through an
// authsdk.SDKClient. Flows surface their progress as state enums and
// inline error strings instead of rendering anything, so the same
// machines back a web UI, a TUI, or a test harness. Success hands a
// Session to a caller-supplied callback; the flows themselves never
// store tokens or redirect.
//
// Timers (resend cooldowns, post-success auto-continue) go through the
// Scheduler interface so tests can drive them deterministically, and
// Close on a flow cancels anything still pending.
package flow
