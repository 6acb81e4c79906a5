package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPostsFetched MsgKind = iota
	MsgPostLoaded
	MsgGalleryUploaded
	MsgProgressUpdate
	MsgSaved
	MsgLoggedOut
	MsgNavigate
)

type postsFetched struct {
	page *models.PostPage
	err  error
}

type postLoaded struct {
	post *models.Post
	err  error
}

type galleryUploaded struct {
	item *gallery.Item
	err  error
}

type saved struct {
	post *models.Post
	err  error
}

// postsFetchedMsg is the constructor for [MsgPostsFetched]
func postsFetchedMsg(page *models.PostPage, err error) Msg {
	return Msg{kind: MsgPostsFetched, data: postsFetched{page, err}}
}

// postLoadedMsg is the constructor for [MsgPostLoaded]
func postLoadedMsg(post *models.Post, err error) Msg {
	return Msg{kind: MsgPostLoaded, data: postLoaded{post, err}}
}

// galleryUploadedMsg is the constructor for [MsgGalleryUploaded]
func galleryUploadedMsg(item *gallery.Item, err error) Msg {
	return Msg{kind: MsgGalleryUploaded, data: galleryUploaded{item, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(post *models.Post, err error) Msg {
	return Msg{kind: MsgSaved, data: saved{post, err}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}

// NavigateMsg is the constructor for [MsgNavigate].
//
// Sent by the session navigator after a logout; the model resets all client state.
func NavigateMsg(path string) Msg {
	return Msg{kind: MsgNavigate, data: path}
}
