package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cineconnect/cinefeed/internal/config"
	"github.com/cineconnect/cinefeed/internal/content"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	bindings    config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		app:         app,
		config:      cfg,
		modifierKey: cfg.Keys.Modifier + "+",
		bindings:    cfg.Keys.Bindings,
	}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewLogin:
		return kh.app.loginID.Focused() || kh.app.loginPass.Focused()
	case ViewComposeReview:
		return kh.app.ratingInput.Focused() || kh.app.commentInput.Focused()
	case ViewComposePost:
		return kh.app.commentInput.Focused()
	case ViewDiscover:
		return kh.app.discoverInput.Focused()
	case ViewSearch:
		return kh.app.searchInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "shift+tab":
		return kh.cycleFocus(key == "shift+tab")
	case "down":
		switch kh.app.view {
		case ViewDiscover:
			if len(kh.app.discoverList.Items()) > 0 {
				kh.app.discoverInput.Blur()
				kh.app.discoverList.Select(0)
			}
			return kh.app, nil
		case ViewSearch:
			if len(kh.app.searchList.Items()) > 0 {
				kh.app.searchInput.Blur()
				kh.app.searchList.Select(0)
			}
			return kh.app, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

// cycleFocus moves between the fields of multi-input views.
func (kh *KeyHandler) cycleFocus(reverse bool) (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewLogin:
		if a.loginID.Focused() {
			a.loginID.Blur()
			a.loginPass.Focus()
		} else {
			a.loginPass.Blur()
			a.loginID.Focus()
		}
		return a, nil
	case ViewComposeReview:
		if a.ratingInput.Focused() {
			a.ratingInput.Blur()
			a.commentInput.Focus()
		} else {
			a.commentInput.Blur()
			a.ratingInput.Focus()
		}
		return a, nil
	case ViewDiscover:
		if len(a.discoverList.Items()) > 0 {
			a.discoverInput.Blur()
			a.discoverList.Select(0)
		}
		return a, nil
	case ViewSearch:
		if len(a.searchList.Items()) > 0 {
			a.searchInput.Blur()
			a.searchList.Select(0)
		}
		return a, nil
	default:
		return a, nil
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewLogin:
		identifier := strings.TrimSpace(a.loginID.Value())
		password := a.loginPass.Value()
		if identifier == "" || password == "" {
			return a, func() tea.Msg {
				return errorMsg{err: fmt.Errorf("both fields are required")}
			}
		}
		a.setStatus(MsgLoggingIn)
		return a, a.login(identifier, password)

	case ViewDiscover:
		term := strings.TrimSpace(a.discoverInput.Value())
		if term == "" {
			return a, nil
		}
		a.setStatus(MsgSearching)
		return a, a.discoverSearch(term)

	case ViewSearch:
		if items := a.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(searchResultItem); ok {
				return kh.openDetails(i.result.ref())
			}
		}
		return a, nil

	case ViewComposeReview:
		if a.ratingInput.Focused() {
			a.ratingInput.Blur()
			a.commentInput.Focus()
			return a, nil
		}
		a.setStatus(MsgSubmitting)
		return a, a.submitReview(a.composeRef, a.ratingInput.Value(), a.commentInput.Value())

	case ViewComposePost:
		a.setStatus(MsgSubmitting)
		return a, a.submitPost(a.composeRef, a.commentInput.Value())

	default:
		return a, nil
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewLogin:
		if a.loginID.Focused() {
			newInput, cmd := a.loginID.Update(msg)
			a.loginID = newInput
			return a, cmd
		}
		newInput, cmd := a.loginPass.Update(msg)
		a.loginPass = newInput
		return a, cmd

	case ViewComposeReview:
		if a.ratingInput.Focused() {
			newInput, cmd := a.ratingInput.Update(msg)
			a.ratingInput = newInput
			return a, cmd
		}
		newInput, cmd := a.commentInput.Update(msg)
		a.commentInput = newInput
		return a, cmd

	case ViewComposePost:
		newInput, cmd := a.commentInput.Update(msg)
		a.commentInput = newInput
		return a, cmd

	case ViewDiscover:
		newInput, cmd := a.discoverInput.Update(msg)
		a.discoverInput = newInput
		return a, cmd

	case ViewSearch:
		newInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newInput
		newVal := strings.TrimSpace(a.searchInput.Value())
		if len(newVal) > 1 {
			return a, tea.Batch(cmd, a.performSearch(newVal))
		}
		return a, cmd

	default:
		return a, nil
	}
}

// handleCustomKeys handles only our custom action keys.
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case "ctrl+c", kh.bindings.Quit:
		return a, tea.Quit, true
	case "esc":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Refresh:
		a.setStatus(MsgRefreshing)
		a.loadingFeed = true
		return a, tea.Batch(a.assembleFeed(), a.loadFeaturedUsers()), true
	case kh.modifierKey + kh.bindings.Discover:
		model, cmd := kh.enterDiscover()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.SearchFeed:
		model, cmd := kh.enterSearch()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Profile:
		model, cmd := kh.enterProfile()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Login:
		model, cmd := kh.enterLoginOrLogout()
		return model, cmd, true
	}

	switch a.view {
	case ViewFeed:
		return kh.handleFeedCustomKeys(key)
	case ViewDiscover:
		return kh.handleDiscoverCustomKeys(key)
	case ViewDetails:
		return kh.handleDetailsCustomKeys(key)
	default:
		return a, nil, false
	}
}

func (kh *KeyHandler) handleFeedCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	item, ok := a.feedList.SelectedItem().(entryItem)

	switch key {
	case kh.modifierKey + kh.bindings.Bookmark:
		if !ok {
			return a, nil, true
		}
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		return a, a.toggleBookmark(item.ref(), item.bookmarked), true

	case kh.modifierKey + kh.bindings.Follow:
		if !ok {
			return a, nil, true
		}
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		author := item.author()
		if author.ID == a.session.User.ID {
			return a, errCmd(fmt.Errorf("that's you")), true
		}
		return a, a.toggleFollow(author.ID, a.rels.Follows(author.ID)), true

	case kh.modifierKey + kh.bindings.OpenPoster:
		if !ok {
			return a, nil, true
		}
		return a, kh.openPoster(item.movie().PosterURL), true

	case kh.modifierKey + kh.bindings.WriteReview:
		if !ok {
			return a, nil, true
		}
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		if a.session.User.Role != content.RoleReviewer {
			return a, errCmd(fmt.Errorf("only reviewers can write reviews")), true
		}
		return kh.enterCompose(ViewComposeReview, item.ref())

	case kh.modifierKey + kh.bindings.WritePost:
		if !ok {
			return a, nil, true
		}
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		return kh.enterCompose(ViewComposePost, item.ref())
	}

	return a, nil, false
}

func (kh *KeyHandler) handleDiscoverCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	item, ok := a.discoverList.SelectedItem().(movieItem)

	switch key {
	case "/", "i":
		a.discoverInput.Focus()
		return a, nil, true

	case kh.modifierKey + kh.bindings.Bookmark:
		if !ok {
			return a, nil, true
		}
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		return a, a.toggleBookmark(item.movie.ID, item.bookmarked), true

	case kh.modifierKey + kh.bindings.OpenPoster:
		if !ok {
			return a, nil, true
		}
		return a, kh.openPoster(item.movie.Poster), true
	}

	return a, nil, false
}

func (kh *KeyHandler) handleDetailsCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case kh.modifierKey + kh.bindings.OpenPoster:
		return a, kh.openPoster(a.posterURL), true

	case kh.modifierKey + kh.bindings.Bookmark:
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		return a, a.toggleBookmark(a.currentRef, a.rels.Bookmarked(a.currentRef)), true

	case kh.modifierKey + kh.bindings.WriteReview:
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		if a.session.User.Role != content.RoleReviewer {
			return a, errCmd(fmt.Errorf("only reviewers can write reviews")), true
		}
		return kh.enterCompose(ViewComposeReview, a.currentRef)

	case kh.modifierKey + kh.bindings.WritePost:
		if cmd, err := kh.requireLogin(); err != nil {
			return a, cmd, true
		}
		return kh.enterCompose(ViewComposePost, a.currentRef)
	}

	return a, nil, false
}

// delegateToCharm lets the Charm components handle everything we don't
// intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewFeed:
		a.feedList, cmd = a.feedList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := a.feedList.SelectedItem().(entryItem); ok {
				return kh.openDetails(i.ref())
			}
		}
		return a, cmd

	case ViewDiscover:
		if !a.discoverInput.Focused() {
			switch msg.String() {
			case "tab", "shift+tab":
				a.discoverInput.Focus()
				return a, nil
			case "up":
				if len(a.discoverList.Items()) > 0 && a.discoverList.Index() == 0 {
					a.discoverInput.Focus()
					return a, nil
				}
			}
		}
		a.discoverList, cmd = a.discoverList.Update(msg)
		if msg.String() == "enter" && !a.discoverInput.Focused() {
			if i, ok := a.discoverList.SelectedItem().(movieItem); ok {
				return kh.openDetails(i.movie.ID)
			}
		}
		return a, cmd

	case ViewSearch:
		if !a.searchInput.Focused() {
			switch msg.String() {
			case "tab", "shift+tab":
				a.searchInput.Focus()
				return a, nil
			case "up":
				if len(a.searchList.Items()) > 0 && a.searchList.Index() == 0 {
					a.searchInput.Focus()
					return a, nil
				}
			case "/", "i":
				a.searchInput.Focus()
				return a, nil
			}
		}
		a.searchList, cmd = a.searchList.Update(msg)
		if msg.String() == "enter" && !a.searchInput.Focused() {
			if i, ok := a.searchList.SelectedItem().(searchResultItem); ok {
				return kh.openDetails(i.result.ref())
			}
		}
		return a, cmd

	case ViewDetails, ViewProfile:
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	default:
		return a, nil
	}
}

// openDetails switches to the details page for one catalog ref.
func (kh *KeyHandler) openDetails(ref string) (tea.Model, tea.Cmd) {
	a := kh.app
	if ref == "" {
		return a, nil
	}
	a.previousView = a.view
	a.view = ViewDetails
	a.currentRef = ref
	a.posterURL = ""
	a.loadingDetails = true
	a.setStatus(MsgLoading)
	return a, a.loadDetails(ref)
}

func (kh *KeyHandler) enterDiscover() (tea.Model, tea.Cmd) {
	a := kh.app
	a.previousView = a.view
	a.view = ViewDiscover
	a.discoverInput.Reset()
	a.discoverInput.Focus()
	a.discoverList.SetItems([]list.Item{})
	return a, nil
}

func (kh *KeyHandler) enterSearch() (tea.Model, tea.Cmd) {
	a := kh.app
	a.previousView = a.view
	a.view = ViewSearch
	a.searchInput.Reset()
	a.searchInput.Focus()
	a.searchList.SetItems([]list.Item{})
	return a, nil
}

func (kh *KeyHandler) enterProfile() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.session == nil {
		return a, errCmd(fmt.Errorf("log in to see your profile"))
	}
	a.previousView = a.view
	a.view = ViewProfile
	a.viewport.SetContent("")
	a.setStatus(MsgLoading)
	return a, a.loadProfile()
}

func (kh *KeyHandler) enterLoginOrLogout() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.session != nil {
		return a, a.logout()
	}
	a.previousView = a.view
	a.view = ViewLogin
	a.loginID.Reset()
	a.loginPass.Reset()
	a.loginPass.Blur()
	a.loginID.Focus()
	return a, nil
}

func (kh *KeyHandler) enterCompose(view View, ref string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	a.previousView = a.view
	a.view = view
	a.composeRef = ref
	a.commentInput.Reset()
	a.commentInput.Blur()
	if view == ViewComposeReview {
		a.ratingInput.Reset()
		a.ratingInput.Focus()
	} else {
		a.commentInput.Focus()
	}
	return a, nil, true
}

// requireLogin returns an error command when nobody is logged in.
func (kh *KeyHandler) requireLogin() (tea.Cmd, error) {
	if kh.app.session == nil {
		err := fmt.Errorf("log in first")
		return errCmd(err), err
	}
	return nil, nil
}

func (kh *KeyHandler) openPoster(url string) tea.Cmd {
	if url == "" {
		return errCmd(fmt.Errorf("no poster available"))
	}
	return kh.app.openURL(url)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return errorMsg{err: err} }
}

// navigateBack implements back navigation between views.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewLogin, ViewComposeReview, ViewComposePost:
		a.view = a.previousView
		a.loginID.Reset()
		a.loginPass.Reset()
		a.ratingInput.Reset()
		a.commentInput.Reset()
		return a, nil

	case ViewDiscover:
		a.view = ViewFeed
		a.discoverInput.Reset()
		a.discoverList.SetItems([]list.Item{})
		return a, nil

	case ViewSearch:
		a.view = a.previousView
		a.searchInput.Reset()
		a.searchList.SetItems([]list.Item{})
		return a, nil

	case ViewDetails:
		a.view = a.previousView
		a.currentRef = ""
		a.posterURL = ""
		return a, nil

	case ViewProfile:
		a.view = ViewFeed
		return a, nil

	default:
		return a, tea.Quit
	}
}

// GetHelpForCurrentView returns our custom help text; Charm renders its own
// for list navigation.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	mod := kh.modifierKey
	b := kh.bindings

	loginHelp := mod + b.Login + ": log in"
	if kh.app.session != nil {
		loginHelp = mod + b.Login + ": log out"
	}

	switch kh.app.view {
	case ViewFeed:
		help := []string{
			mod + b.Refresh + ": refresh",
			mod + b.Discover + ": discover",
			mod + b.SearchFeed + ": search",
			loginHelp,
		}
		if kh.app.session != nil {
			help = append(help,
				mod+b.Profile+": profile",
				mod+b.Bookmark+": bookmark",
				mod+b.Follow+": follow",
			)
		}
		return help

	case ViewDetails:
		help := []string{mod + b.OpenPoster + ": poster"}
		if kh.app.session != nil {
			help = append(help,
				mod+b.Bookmark+": bookmark",
				mod+b.WriteReview+": review",
				mod+b.WritePost+": post",
			)
		}
		return append(help, "esc: back")

	case ViewDiscover:
		return []string{"enter: search/open", mod + b.OpenPoster + ": poster", "esc: back"}

	case ViewProfile:
		return []string{mod + b.Refresh + ": refresh", "esc: back"}

	case ViewSearch:
		return []string{"enter: open", "esc: back"}

	case ViewLogin:
		return []string{"enter: log in", "tab: next field", "esc: cancel"}

	case ViewComposeReview, ViewComposePost:
		return []string{"enter: publish", "esc: cancel"}

	default:
		return []string{}
	}
}
