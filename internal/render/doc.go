// Package render turns the intermediate document model into output artifacts.
// PDF generation happens fully in memory so callers can publish atomically;
// Markdown is the degraded form used when a document defeats PDF layout.
package render
