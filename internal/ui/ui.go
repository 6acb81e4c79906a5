package ui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/session"
	"github.com/desertthunder/wpx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PostListView ViewState = iota
	EditorView
	GalleryView
	UploadView
	LoggedOutView
)

// Editor form fields, in tab order.
const (
	fieldTitle = iota
	fieldFeatured
	fieldContent
	fieldCount
)

const defaultPerPage = 20

var statuses = []string{"draft", "publish", "pending", "private"}

// PostSource reads posts (services.WordPressService).
type PostSource interface {
	Posts(ctx context.Context, q models.PostQuery) (*models.PostPage, error)
	Post(ctx context.Context, id int, edit bool) (*models.Post, error)
}

// Session is the part of [session.Store] the TUI needs.
type Session interface {
	Current() (session.Session, bool)
	Logout() error
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	posts   PostSource
	session Session
	editor  *tasks.Editor
	user    session.User
	perPage int
	width   int
	height  int

	postList    list.Model
	galleryList list.Model

	title        textinput.Model
	featured     textinput.Model
	featuredPath string
	content      textarea.Model
	focus        int

	uploadFile    textinput.Model
	uploadCaption textinput.Model
	uploadFocus   int

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	status       string
	busy         bool
	err          error
	help         help.Model
	keys         keyMap
}

// Option configures a [Model].
type Option func(*Model)

// WithPerPage sets how many posts the list fetches.
func WithPerPage(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, posts PostSource, sess Session, editor *tasks.Editor, opts ...Option) *Model {
	m := &Model{
		ctx:     ctx,
		view:    PostListView,
		posts:   posts,
		session: sess,
		editor:  editor,
		perPage: defaultPerPage,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.postList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.postList.Title = "Your Posts"
	m.galleryList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.galleryList.Title = "Gallery"

	m.title = newInput("Post title")
	m.featured = newInput("Path to a featured image (optional)")
	m.uploadFile = newInput("Path to an image file")
	m.uploadCaption = newInput("Caption (optional)")

	m.content = textarea.New()
	m.content.Placeholder = "Write your post here..."
	m.content.ShowLineNumbers = false
	m.content.CharLimit = 0
	m.content.MaxHeight = 0
	return m
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "› "
	return in
}

// Init fetches the user's posts, or shows the signed-out view when there is no session.
func (m *Model) Init() tea.Cmd {
	s, ok := m.session.Current()
	if !ok {
		m.view = LoggedOutView
		return nil
	}
	m.user = s.User
	return m.fetchPosts()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case PostListView:
			return m.handlePostListKeys(msg)
		case EditorView:
			return m.handleEditorKeys(msg)
		case GalleryView:
			return m.handleGalleryKeys(msg)
		case UploadView:
			return m.handleUploadKeys(msg)
		case LoggedOutView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPostsFetched:
		data := msg.data.(postsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		cmd := m.postList.SetItems(postItems(data.page.Posts))
		m.postList.Title = fmt.Sprintf("Your Posts (%d)", data.page.Total)
		return m, cmd

	case MsgPostLoaded:
		data := msg.data.(postLoaded)
		if data.err != nil {
			m.err = data.err
			m.status = ""
			return m, nil
		}
		m.editor.EnterEditMode(data.post)
		m.loadDraft()
		m.status = fmt.Sprintf("Editing post #%d", data.post.ID)
		m.view = EditorView
		return m, nil

	case MsgGalleryUploaded:
		data := msg.data.(galleryUploaded)
		m.busy = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.status = "Image uploaded"
		m.uploadFile.SetValue("")
		m.uploadCaption.SetValue("")
		m.view = GalleryView
		return m, m.refreshGallery()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		m.status = m.progress.Message
		if m.progressChan == nil {
			return m, nil
		}
		return m, waitForProgress(m.progressChan)

	case MsgSaved:
		data := msg.data.(saved)
		m.busy = false
		m.progressChan = nil
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Saved post #%d (%s)", data.post.ID, data.post.Status)
		if m.editor.Draft().Mode == tasks.ModeCreate {
			m.loadDraft()
		}
		return m, m.fetchPosts()

	case MsgLoggedOut:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
			return m, nil
		}
		m.reset()
		return m, nil

	case MsgNavigate:
		m.reset()
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PostListView:
		return m.renderPostList()
	case EditorView:
		return m.renderEditor()
	case GalleryView:
		return m.renderGallery()
	case UploadView:
		return m.renderUpload()
	case LoggedOutView:
		return m.renderLoggedOut()
	default:
		return ""
	}
}

func (m *Model) handlePostListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.postList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.postList, cmd = m.postList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.postList.SelectedItem().(postItem); ok {
			m.status = fmt.Sprintf("Loading post #%d...", item.post.ID)
			return m, m.fetchPost(item.post.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.newPost):
		m.editor.EnterCreateMode()
		m.loadDraft()
		m.status = "New post"
		m.view = EditorView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchPosts()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.postList, cmd = m.postList.Update(msg)
	return m, cmd
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.blurFields()
		m.err = nil
		m.view = PostListView
		return m, nil
	case key.Matches(msg, m.keys.focus):
		m.focusField((m.focus + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.save):
		if m.busy {
			return m, nil
		}
		m.syncEditor()
		return m, m.startSave()
	case key.Matches(msg, m.keys.gallery):
		m.syncEditor()
		m.view = GalleryView
		return m, m.refreshGallery()
	case key.Matches(msg, m.keys.upload):
		m.syncEditor()
		m.openUpload()
		return m, nil
	case key.Matches(msg, m.keys.insert):
		m.syncEditor()
		m.insertGallery()
		return m, nil
	case key.Matches(msg, m.keys.status):
		m.cycleStatus()
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldFeatured:
		m.featured, cmd = m.featured.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	}
	m.syncEditor()
	return m, cmd
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = EditorView
		m.focusField(m.focus)
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if len(m.galleryList.Items()) == 0 {
			return m, nil
		}
		if err := m.editor.RemoveGalleryItem(m.galleryList.Index()); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Removed image"
		return m, m.refreshGallery()
	case msg.String() == "u":
		m.openUpload()
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.galleryList, cmd = m.galleryList.Update(msg)
	return m, cmd
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.uploadFile.Blur()
		m.uploadCaption.Blur()
		m.view = GalleryView
		return m, m.refreshGallery()
	case key.Matches(msg, m.keys.focus):
		m.uploadFocus = (m.uploadFocus + 1) % 2
		m.focusUpload()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.busy {
			return m, nil
		}
		m.editor.SelectGalleryFile(strings.TrimSpace(m.uploadFile.Value()))
		m.editor.SetCaption(m.uploadCaption.Value())
		m.busy = true
		m.err = nil
		m.status = "Uploading..."
		return m, m.uploadGallery()
	}

	var cmd tea.Cmd
	if m.uploadFocus == 0 {
		m.uploadFile, cmd = m.uploadFile.Update(msg)
	} else {
		m.uploadCaption, cmd = m.uploadCaption.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PostListView:
		m.postList, cmd = m.postList.Update(msg)
	case GalleryView:
		m.galleryList, cmd = m.galleryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.postList.SetSize(width-4, height-8)
	m.galleryList.SetSize(width-4, height-8)
	m.content.SetWidth(max(20, width-4))
	m.content.SetHeight(max(5, height-14))
	m.help.Width = width
}

// syncEditor pushes the form into the editor, including the content caret.
func (m *Model) syncEditor() {
	m.editor.SetTitle(m.title.Value())
	if path := strings.TrimSpace(m.featured.Value()); path != m.featuredPath {
		m.editor.SelectFeaturedFile(path)
		m.featuredPath = path
	}
	m.editor.SetContent(m.content.Value())
	caret := caretOffset(m.content)
	m.editor.SetCaret(caret, caret)
}

// loadDraft replaces the form with the editor's draft.
func (m *Model) loadDraft() {
	d := m.editor.Draft()
	m.title.SetValue(d.Title)
	m.featured.SetValue(d.FeaturedFile)
	m.featuredPath = d.FeaturedFile
	m.content.SetValue(d.Content)
	moveCaret(&m.content, d.CaretStart)
	m.err = nil
	m.focusField(fieldTitle)
}

func (m *Model) insertGallery() {
	content, caret, err := m.editor.InsertGallery()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.content.SetValue(content)
	moveCaret(&m.content, caret)
	m.focusField(fieldContent)
	m.status = fmt.Sprintf("Inserted gallery with %d images", len(m.editor.Gallery()))
}

func (m *Model) cycleStatus() {
	current := m.editor.Draft().Status
	next := statuses[0]
	for i, s := range statuses {
		if s == current {
			next = statuses[(i+1)%len(statuses)]
			break
		}
	}
	m.editor.SetStatus(next)
	m.status = "Status: " + next
}

func (m *Model) openUpload() {
	m.view = UploadView
	m.uploadFocus = 0
	m.focusUpload()
}

func (m *Model) focusField(field int) {
	m.blurFields()
	m.focus = field
	switch field {
	case fieldTitle:
		m.title.Focus()
	case fieldFeatured:
		m.featured.Focus()
	case fieldContent:
		m.content.Focus()
	}
}

func (m *Model) blurFields() {
	m.title.Blur()
	m.featured.Blur()
	m.content.Blur()
}

func (m *Model) focusUpload() {
	if m.uploadFocus == 0 {
		m.uploadCaption.Blur()
		m.uploadFile.Focus()
		return
	}
	m.uploadFile.Blur()
	m.uploadCaption.Focus()
}

// reset drops all client state after a logout.
func (m *Model) reset() {
	m.editor.Reset()
	m.user = session.User{}
	m.postList.SetItems(nil)
	m.galleryList.SetItems(nil)
	m.title.SetValue("")
	m.featured.SetValue("")
	m.featuredPath = ""
	m.content.SetValue("")
	m.uploadFile.SetValue("")
	m.uploadCaption.SetValue("")
	m.blurFields()
	m.progressChan = nil
	m.progress = tasks.ProgressUpdate{}
	m.busy = false
	m.err = nil
	m.status = "Logged out"
	m.view = LoggedOutView
}

func (m *Model) refreshGallery() tea.Cmd {
	return m.galleryList.SetItems(galleryItems(m.editor.Gallery()))
}

func (m *Model) fetchPosts() tea.Cmd {
	q := models.PostQuery{
		Author:  m.user.ID,
		PerPage: m.perPage,
		Status:  "any",
		Embed:   true,
	}
	return func() tea.Msg {
		page, err := m.posts.Posts(m.ctx, q)
		return postsFetchedMsg(page, err)
	}
}

func (m *Model) fetchPost(id int) tea.Cmd {
	return func() tea.Msg {
		post, err := m.posts.Post(m.ctx, id, true)
		return postLoadedMsg(post, err)
	}
}

func (m *Model) uploadGallery() tea.Cmd {
	return func() tea.Msg {
		item, err := m.editor.UploadGalleryImage(m.ctx)
		return galleryUploadedMsg(item, err)
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg(m.session.Logout())
	}
}

func (m *Model) startSave() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 10)
	m.progressChan = ch
	m.busy = true
	m.err = nil
	m.status = "Saving..."
	return tea.Batch(m.save(ch), waitForProgress(ch))
}

// save runs [tasks.Editor.Save] and closes the progress channel when it returns.
func (m *Model) save(ch chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		defer close(ch)
		post, err := m.editor.Save(m.ctx, ch)
		return savedMsg(post, err)
	}
}

func waitForProgress(ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

// caretOffset returns the cursor position of ta as a rune offset into its value.
func caretOffset(ta textarea.Model) int {
	li := ta.LineInfo()
	return offsetAt(ta.Value(), ta.Line(), li.StartColumn+li.ColumnOffset)
}

// moveCaret places the cursor of ta at a rune offset. ta's cursor must be on or below the target row.
func moveCaret(ta *textarea.Model, offset int) {
	value := ta.Value()
	row, col := position(value, offset)
	for i := 0; ta.Line() > row && i <= len(value); i++ {
		ta.CursorUp()
	}
	ta.SetCursor(col)
}

func offsetAt(value string, row, col int) int {
	lines := strings.Split(value, "\n")
	row = max(0, min(row, len(lines)-1))
	offset := 0
	for _, line := range lines[:row] {
		offset += utf8.RuneCountInString(line) + 1
	}
	return offset + max(0, min(col, utf8.RuneCountInString(lines[row])))
}

func position(value string, offset int) (row, col int) {
	lines := strings.Split(value, "\n")
	offset = max(0, offset)
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if offset <= n || i == len(lines)-1 {
			return i, min(offset, n)
		}
		offset -= n + 1
	}
	return 0, 0
}

func (m *Model) statusLine() string {
	if m.err != nil {
		return styles.error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.busy {
		return styles.warning.Render(m.status)
	}
	return styles.muted.Render(m.status)
}

func (m *Model) renderPostList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.newPost, m.keys.refresh, m.keys.logout, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.postList.View(), m.statusLine(), helpView)
}

func (m *Model) renderEditor() string {
	d := m.editor.Draft()

	heading := "New Post"
	if d.Mode == tasks.ModeEdit {
		heading = fmt.Sprintf("Editing Post #%d", d.PostID)
	}
	title := styles.title.Render(heading)

	meta := fmt.Sprintf("Status: %s • Gallery: %d images", d.Status, len(d.Gallery))
	if d.FeaturedMediaID > 0 {
		meta += fmt.Sprintf(" • Featured media #%d", d.FeaturedMediaID)
	}

	form := fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s",
		styles.label.Render("Title"), m.title.View(),
		styles.label.Render("Featured image"), m.featured.View(),
		m.content.View(),
	)

	helpKeys := []key.Binding{
		m.keys.focus, m.keys.save, m.keys.gallery, m.keys.upload,
		m.keys.insert, m.keys.status, m.keys.back,
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s", title, styles.muted.Render(meta), form, m.statusLine(), helpView)
}

func (m *Model) renderGallery() string {
	uploadKey := key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload"))
	helpKeys := []key.Binding{uploadKey, m.keys.remove, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	body := m.galleryList.View()
	if len(m.galleryList.Items()) == 0 {
		body = styles.title.Render("Gallery") + "\n" + styles.muted.Render("No images yet. Press u to upload one.")
	}
	return fmt.Sprintf("%s\n%s\n\n%s", body, m.statusLine(), helpView)
}

func (m *Model) renderUpload() string {
	title := styles.title.Render("Upload Gallery Image")
	form := fmt.Sprintf("%s\n%s\n\n%s\n%s",
		styles.label.Render("Image file"), m.uploadFile.View(),
		styles.label.Render("Caption"), m.uploadCaption.View(),
	)

	uploadKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload"))
	helpKeys := []key.Binding{uploadKey, m.keys.focus, m.keys.back}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, styles.frame.Render(form), m.statusLine(), helpView)
}

func (m *Model) renderLoggedOut() string {
	title := styles.title.Render("Not signed in")
	info := "Run `wpx auth login` to sign in to your WordPress site."
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, info, m.statusLine(), helpView)
}
