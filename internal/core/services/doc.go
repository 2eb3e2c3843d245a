// Package services implements the core sync engine: deduplication and
// classification of incoming records, the analyze-confirm review
// workflow, chunked upsert commits, the daily automatic sync guard,
// best-effort outbound pushes, and the background scheduler.
package services
