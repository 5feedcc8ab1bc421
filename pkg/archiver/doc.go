/*
Package archiver moves aged telemetry out of the live tables.

Statuses, positions and terminal commands older than the configured
retention are moved into append-only archive shadow tables in bounded
batches. Each batch is one DELETE ... RETURNING feeding an INSERT, so a
row is either live or archived, never both and never lost.
*/
package archiver
