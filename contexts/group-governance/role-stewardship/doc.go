// Package rolestewardship implements trust-weighted role activation inside the
// group-governance context.
//
// Members of a leaderless group express trust (0..100) in candidates for a
// role. When a candidate's aggregate score reaches the role threshold the
// engine grants the role; when it erodes to half the threshold or lower the
// grant is revoked. All mutations for one role are serialized by the
// coordinator and committed together with their outbox events. The rest of
// the application reads the result through CapabilityView.
package rolestewardship
