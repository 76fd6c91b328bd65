// Package cooldown implements per-key activation gating and timed
// effect cleanup for special actions.
//
// # Cooldown Gating
//
// Every activation of a key records its instant in a ledger that is
// never pruned. The gate is advisory: Activate always records, and the
// cooldown window is applied at query time by CanActivate and
// TimeUntilAvailable. Callers check the gate before activating; an
// activation inside the window simply restarts it.
//
// # Timed Effects
//
// An activation with an effect duration and a cleanup callback
// schedules the cleanup to run once when the effect expires. A
// re-activation before expiry cancels the pending cleanup and restarts
// the effect window, so cleanup runs exactly once per effect lifetime.
//
// # Cleanup Delivery
//
// Cleanup callbacks run outside the manager lock, so they may call
// back into the manager or into the components that triggered the
// activation. A timer that fires while its replacement is being
// scheduled re-validates its identity under the lock and silently
// discards itself when it lost.
//
// # Manual Teardown
//
// ForceCleanup and CleanupAll cancel pending cleanups without invoking
// the callbacks. Activation records survive teardown, so cooldown
// windows remain in force.
package cooldown
