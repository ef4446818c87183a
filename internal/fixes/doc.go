// Package fixes repairs a VIR method before it is handed to the verifier.
//
// FixGhostVars resolves labelled old expressions to the label statements
// that define their snapshots and reports references that cannot be
// resolved as an EncodingDefect. HavocAssignedLocals and HavocLoops insert
// havoc statements in front of loops for every local the loop body may
// assign.
//
// FixMethod runs both passes in that order. The havoc statements inserted
// by the second pass are not labels, so they never interfere with old
// resolution.
package fixes
