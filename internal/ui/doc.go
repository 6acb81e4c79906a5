// Package ui implements the interactive post editor using bubbletea's Elm architecture.
//
// Views:
//  1. [PostListView] : Browse the signed-in user's posts
//  2. [EditorView] : Edit title, featured image and content of a new or existing post
//  3. [GalleryView] : Review the working gallery and remove items
//  4. [UploadView] : Upload an image with a caption into the gallery
//  5. [LoggedOutView] : Shown when no session exists or after logout
//
// The [Model] keeps no post state of its own. Every keystroke in the editor is pushed into a
// [tasks.Editor], which owns the draft, the gallery and the caret used by gallery insertion.
// Progress from saves flows through a channel read by a [tea.Cmd], as with any long-running task.
//
// A logout arrives as [NavigateMsg] from the session navigator and resets every view.
package ui
