// Package preflight provides readiness checks for the filesystem paths a
// conversion run depends on.
//
// Both operating modes consult it before touching any document: the batch
// command aborts when a check fails so a doomed run never half-converts a
// tree, and the watch daemon refuses to start against roots it cannot use.
// Checks cover the input and output roots, the optional scratch directory,
// and a free-space floor on the output filesystem.
package preflight
