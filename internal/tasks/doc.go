// Package tasks implements the post editor that the CLI and the TUI drive.
//
// # Editor State
//
// [Editor] owns a content buffer and a gallery list for one post at a time:
//
//  1. [Editor.EnterCreateMode] : blank post, status back to the configured default
//  2. [Editor.EnterEditMode] : loads a post and seeds the gallery once from its content
//  3. [Editor.Reset] : clears the draft but keeps the mode and post id
//
// # Network Operations
//
//   - [Editor.UploadGalleryImage] : uploads the selected file and appends it to the gallery
//   - [Editor.UploadFeaturedImage] : uploads the featured image and remembers its media id
//   - [Editor.UploadBatch] : uploads many files with a bounded, rate limited worker pool
//   - [Editor.Save] : validates, uploads a pending featured image and creates or updates the post
//
// Network calls never hold the editor lock. While one is in flight the editor reports
// busy and Save is refused with [shared.ErrBusy]. Failed uploads keep the selected file
// so they can be retried.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with
// default so a slow or absent reader never blocks the editor.
package tasks
