// Package repositories implements SQLite persistence for wpx.
//
// Key Implementations:
//   - [KVRepository] : String key-value store backing the session and settings
//   - [SettingsRepository] : Client settings stored as JSON under [SettingsKey]
//   - [UploadRepository] : Local history of uploaded media with soft deletes
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// [NextSequence] increments the per-table counter in its "<table>_sequence" table and is meant to run inside
// [InTx] together with the insert it numbers.
package repositories
