// Package dial implements the digit sequence resolver at the center of
// the remote-control pipeline.
//
// # Digit Accumulation
//
// Digits append to a buffer that echoes on the panel as it grows. Each
// digit restarts the quiet-period timer, so a viewer can key a
// multi-digit channel at their own pace. The dialer is Idle while the
// buffer is empty and Accumulating while a resolution is pending.
//
// # Special Actions
//
// After every append the buffer is checked against the special-action
// registry. An exact match consumes the buffer immediately, without
// waiting for the quiet period. Matching is eager: a registered key
// that is a prefix of a longer key permanently shadows the longer one.
// Triggering runs the cooldown gate, the panel feedback, the action,
// and the settle pause as one sequence; a trigger blocked by its
// cooldown still consumes the keystrokes.
//
// # Quiet-Period Resolution
//
// When the timer fires, the buffer is checked against the registry
// once more (keys can be registered while digits accumulate) and
// otherwise parsed as a channel number and handed to the tuner.
// Resolution always ends with an empty buffer.
//
// # Concurrency
//
// One mutex orders the remote's foreground events and the timer
// callback. Feedback holds (error codes, settle pauses) sleep while
// holding it: input arriving mid-feedback waits rather than tearing
// the sequence, which is the behavior a viewer expects from an
// appliance. A timer that fires while being replaced re-validates
// under the lock that it is still the current timer and that the
// buffer is non-empty, and otherwise discards itself.
package dial
