// Package tui is the terminal front end. It owns no aggregation logic: every
// pass goes through the feed assembler, and results carry generation tokens
// so a superseded pass can never overwrite a newer one.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/cineconnect/cinefeed/internal/catalog"
	"github.com/cineconnect/cinefeed/internal/config"
	"github.com/cineconnect/cinefeed/internal/content"
	"github.com/cineconnect/cinefeed/internal/debuglog"
	"github.com/cineconnect/cinefeed/internal/feed"
	"github.com/cineconnect/cinefeed/internal/media"
	"github.com/cineconnect/cinefeed/internal/search"
	"github.com/cineconnect/cinefeed/internal/session"
)

type App struct {
	config     *config.Config
	client     *content.Client
	catalog    *catalog.Client
	assembler  *feed.Assembler
	resolver   feed.Resolver
	launcher   *media.Launcher
	searcher   search.Searcher
	sessions   *session.Store
	keyHandler *KeyHandler
	maxLookups int

	feedList     list.Model
	discoverList list.Model
	searchList   list.Model

	discoverInput textinput.Model
	searchInput   textinput.Model
	loginID       textinput.Model
	loginPass     textinput.Model
	ratingInput   textinput.Model
	commentInput  textinput.Model

	viewport viewport.Model

	view         View
	previousView View

	session     *content.Session
	rels        content.Relationships
	featured    []content.User
	recommended []catalog.Movie

	assembled   *feed.AssembledFeed
	feedGen     int
	loadingFeed bool

	currentRef     string
	posterURL      string
	composeRef     string
	loginFocus     int
	composeFocus   int
	loadingDetails bool

	width  int
	height int

	err       error
	status    string
	statusSeq int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(cfg *config.Config, client *content.Client, cat *catalog.Client, sessions *session.Store) *App {
	ApplyTheme(map[string]string{
		"primary":    cfg.UI.Colors.Primary,
		"secondary":  cfg.UI.Colors.Secondary,
		"accent":     cfg.UI.Colors.Accent,
		"text":       cfg.UI.Colors.Text,
		"muted":      cfg.UI.Colors.Muted,
		"error":      cfg.UI.Colors.Error,
		"success":    cfg.UI.Colors.Success,
		"highlight":  cfg.UI.Colors.Highlight,
		"background": cfg.UI.Colors.Background,
	})

	feedList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	feedList.Title = "› feed"
	feedList.SetShowStatusBar(false)
	feedList.SetFilteringEnabled(true)
	feedList.SetShowHelp(true)

	discoverList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	discoverList.Title = "› discover"
	discoverList.SetShowStatusBar(false)
	discoverList.SetShowHelp(false)
	discoverList.SetFilteringEnabled(false)

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› search results"
	searchList.SetShowStatusBar(false)
	searchList.SetShowHelp(false)
	searchList.SetFilteringEnabled(false)

	di := textinput.New()
	di.Placeholder = "Search the movie catalog..."

	si := textinput.New()
	si.Placeholder = "Search your feed..."

	id := textinput.New()
	id.Placeholder = "email or username"

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	ri := textinput.New()
	ri.Placeholder = "rating 1-5"
	ri.CharLimit = 1

	ci := textinput.New()
	ci.Placeholder = "what did you think?"

	resolver := feed.NewCatalogResolver(cat)
	assembler := feed.NewAssembler(client, resolver,
		feed.WithPublicLimit(cfg.Feed.PublicLimit),
		feed.WithMaxLookups(cfg.Catalog.MaxLookups),
	)

	searcher, err := search.NewIndexedEngine()
	if err != nil {
		debuglog.Warnf("search engine init failed, falling back: %v", err)
		searcher = search.NewEngine()
	}

	app := &App{
		config:        cfg,
		client:        client,
		catalog:       cat,
		assembler:     assembler,
		resolver:      resolver,
		launcher:      media.NewLauncher(cfg),
		searcher:      searcher,
		sessions:      sessions,
		maxLookups:    cfg.Catalog.MaxLookups,
		feedList:      feedList,
		discoverList:  discoverList,
		searchList:    searchList,
		discoverInput: di,
		searchInput:   si,
		loginID:       id,
		loginPass:     pw,
		ratingInput:   ri,
		commentInput:  ci,
		viewport:      viewport.New(0, 0),
		view:          ViewFeed,
		previousView:  ViewFeed,
		rels:          content.NewRelationships(content.User{}),
	}

	if sess, err := sessions.Current(); err != nil {
		debuglog.Warnf("restoring session: %v", err)
	} else if sess != nil {
		app.session = sess
		app.rels = content.NewRelationships(sess.User)
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 120 {
		wordWrapWidth = 120
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	a.loadingFeed = true
	return tea.Batch(
		a.assembleFeed(),
		a.loadFeaturedUsers(),
		a.loadRecommended(),
		tea.EnterAltScreen,
	)
}

func (a *App) setStatus(note string) {
	a.status = note
	a.statusSeq++
	a.err = nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.feedList.SetSize(msg.Width, msg.Height-4)
		a.discoverList.SetSize(msg.Width, listHeight(msg.Height))
		a.searchList.SetSize(msg.Width, listHeight(msg.Height))
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3

		inputWidth := msg.Width - 4
		if inputWidth < 20 {
			inputWidth = msg.Width
		}
		a.discoverInput.Width = inputWidth
		a.searchInput.Width = inputWidth

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case feedLoadedMsg:
		// Stale pass: a newer one was dispatched after this one started.
		if msg.gen != a.feedGen {
			debuglog.Debugf("discarding stale pass %d (current %d)", msg.gen, a.feedGen)
			break
		}
		a.loadingFeed = false
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.assembled = msg.feed
		a.feedList.SetItems(a.buildFeedItems())
		if err := a.searcher.Index(msg.feed); err != nil {
			debuglog.Warnf("indexing pass: %v", err)
		}
		a.setStatus(MsgFeedSummary(len(msg.feed.Reviews), len(msg.feed.Posts), a.session != nil))
		cmds = append(cmds, a.clearStatusAfter(statusTTL))

	case usersLoadedMsg:
		// Non-fatal by design of the surrounding view.
		if msg.err != nil {
			debuglog.Debugf("featured users unavailable: %v", msg.err)
			break
		}
		a.featured = msg.users

	case moviesLoadedMsg:
		if msg.err != nil {
			debuglog.Debugf("recommended movies unavailable: %v", msg.err)
			break
		}
		a.recommended = msg.movies

	case detailsRenderedMsg:
		if a.view != ViewDetails || msg.ref != a.currentRef {
			break
		}
		a.loadingDetails = false
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.posterURL = msg.poster
		a.viewport.SetContent(msg.content)
		a.viewport.GotoTop()

	case discoverResultsMsg:
		if a.view != ViewDiscover {
			break
		}
		if msg.err != nil {
			a.err = msg.err
			break
		}
		items := make([]list.Item, len(msg.movies))
		for i, m := range msg.movies {
			items[i] = movieItem{movie: m, bookmarked: a.rels.Bookmarked(m.ID)}
		}
		a.discoverList.SetItems(items)
		a.setStatus(MsgResultsCount(len(msg.movies)))
		cmds = append(cmds, a.clearStatusAfter(statusTTL))

	case profileRenderedMsg:
		if a.view != ViewProfile {
			break
		}
		if msg.err != nil {
			a.err = msg.err
			break
		}
		if msg.user != nil && a.session != nil {
			a.session.User = *msg.user
			a.rels = content.NewRelationships(*msg.user)
			if err := a.sessions.UpdateUser(*msg.user); err != nil {
				debuglog.Warnf("saving refreshed profile: %v", err)
			}
		}
		a.viewport.SetContent(msg.content)
		a.viewport.GotoTop()

	case loginResultMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.session = msg.session
		a.rels = content.NewRelationships(msg.session.User)
		a.view = ViewFeed
		a.loginID.Reset()
		a.loginPass.Reset()
		a.setStatus(MsgWelcome(msg.session.User.Username))
		a.loadingFeed = true
		return a, tea.Batch(a.assembleFeed(), a.loadFeaturedUsers())

	case loggedOutMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.session = nil
		a.rels = content.NewRelationships(content.User{})
		a.view = ViewFeed
		a.setStatus(MsgLoggedOut)
		a.loadingFeed = true
		return a, a.assembleFeed()

	case relationshipsMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		if a.session != nil && msg.user != nil {
			a.session.User = *msg.user
			a.rels = content.NewRelationships(*msg.user)
		}
		a.feedList.SetItems(a.buildFeedItems())
		a.setStatus(msg.note)
		cmds = append(cmds, a.clearStatusAfter(statusTTL))

	case reviewSubmittedMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.ratingInput.Reset()
		a.commentInput.Reset()
		a.setStatus(MsgReviewSent)
		return a, tea.Batch(a.afterCompose(), a.clearStatusAfter(statusTTL))

	case postSubmittedMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.commentInput.Reset()
		a.setStatus(MsgPostSent)
		return a, tea.Batch(a.afterCompose(), a.clearStatusAfter(statusTTL))

	case searchResultsMsg:
		if a.view != ViewSearch {
			break
		}
		items := make([]list.Item, len(msg.results))
		for i, r := range msg.results {
			items[i] = r
		}
		a.searchList.SetItems(items)

	case statusExpiredMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}

	case errorMsg:
		a.err = msg.err
	}

	switch a.view {
	case ViewFeed:
		newListModel, cmd := a.feedList.Update(msg)
		a.feedList = newListModel
		cmds = append(cmds, cmd)
	case ViewDiscover:
		newInput, cmd := a.discoverInput.Update(msg)
		a.discoverInput = newInput
		cmds = append(cmds, cmd)
		newList, listCmd := a.discoverList.Update(msg)
		a.discoverList = newList
		cmds = append(cmds, listCmd)
	case ViewDetails, ViewProfile:
		switch msg.(type) {
		case tea.KeyMsg, tea.WindowSizeMsg, tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	case ViewSearch:
		newInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newInput
		cmds = append(cmds, cmd)
		newList, listCmd := a.searchList.Update(msg)
		a.searchList = newList
		cmds = append(cmds, listCmd)

		query := strings.TrimSpace(a.searchInput.Value())
		if len(query) > 1 {
			cmds = append(cmds, a.performSearch(query))
		}
	}

	return a, tea.Batch(cmds...)
}

// afterCompose returns to the view a compose form was opened from and
// refreshes whatever that view shows.
func (a *App) afterCompose() tea.Cmd {
	a.view = a.previousView
	if a.view == ViewDetails && a.currentRef != "" {
		a.loadingDetails = true
		return a.loadDetails(a.currentRef)
	}
	a.loadingFeed = true
	return a.assembleFeed()
}

// buildFeedItems converts the current pass into annotated list rows, reviews
// first, then posts, each section keeping service order.
func (a *App) buildFeedItems() []list.Item {
	if a.assembled == nil {
		return nil
	}
	items := make([]list.Item, 0, len(a.assembled.Reviews)+len(a.assembled.Posts))
	for i := range a.assembled.Reviews {
		entry := &a.assembled.Reviews[i]
		items = append(items, entryItem{
			review:     entry,
			bookmarked: a.rels.Bookmarked(entry.Review.MovieID),
		})
	}
	for i := range a.assembled.Posts {
		entry := &a.assembled.Posts[i]
		items = append(items, entryItem{
			post:       entry,
			isPost:     true,
			bookmarked: a.rels.Bookmarked(entry.Post.MovieID),
		})
	}
	return items
}

func listHeight(total int) int {
	h := total - 10
	if h < 5 {
		h = 5
	}
	return h
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewFeed:
		if a.assembled == nil && !a.loadingFeed {
			content = lipgloss.NewStyle().
				Width(a.width).
				Height(a.height-3).
				Align(lipgloss.Center, lipgloss.Center).
				Render(GetWelcomeMessage())
		} else if a.loadingFeed && a.assembled == nil {
			content = lipgloss.NewStyle().
				Width(a.width).
				Height(a.height-3).
				Align(lipgloss.Center, lipgloss.Center).
				Render(lipgloss.NewStyle().Foreground(MutedColor).Render(MsgRefreshing))
		} else {
			var rows []string
			if strip := recommendedStrip(a.recommended, a.rels, a.width); strip != "" {
				rows = append(rows, strip)
			}
			if strip := featuredStrip(a.featured, a.rels, a.width); strip != "" {
				rows = append(rows, strip)
			}
			if len(rows) > 0 {
				rows = append(rows, a.feedList.View())
				content = lipgloss.JoinVertical(lipgloss.Top, rows...)
			} else {
				content = a.feedList.View()
			}
		}

	case ViewDetails:
		if a.loadingDetails {
			content = lipgloss.NewStyle().
				Width(a.width).
				Height(a.height-3).
				Align(lipgloss.Center, lipgloss.Center).
				Render(lipgloss.NewStyle().Foreground(MutedColor).Render(MsgLoading))
		} else {
			content = a.viewport.View()
		}

	case ViewProfile:
		content = a.viewport.View()

	case ViewDiscover:
		content = a.renderInputOverList(
			"› discover",
			&a.discoverInput,
			a.discoverList.View(),
		)

	case ViewSearch:
		content = a.renderInputOverList(
			"› search feed",
			&a.searchInput,
			a.searchList.View(),
		)

	case ViewLogin:
		content = lipgloss.NewStyle().
			Width(a.width).
			Height(a.height-3).
			Align(lipgloss.Center, lipgloss.Center).
			Render(
				lipgloss.JoinVertical(
					lipgloss.Center,
					TitleStyle.Render("› log in"),
					"",
					a.loginID.View(),
					a.loginPass.View(),
					"",
					HelpStyle.Render("Enter: log in • Tab: next field • Esc: cancel"),
				),
			)

	case ViewComposeReview:
		heading := "› review"
		if a.composeRef != "" {
			heading = "› review " + a.composeRef
		}
		content = lipgloss.NewStyle().
			Width(a.width).
			Height(a.height-3).
			Align(lipgloss.Center, lipgloss.Center).
			Render(
				lipgloss.JoinVertical(
					lipgloss.Center,
					TitleStyle.Render(heading),
					"",
					a.ratingInput.View(),
					a.commentInput.View(),
					"",
					HelpStyle.Render("Enter: publish • Tab: next field • Esc: cancel"),
				),
			)

	case ViewComposePost:
		heading := "› post"
		if a.composeRef != "" {
			heading = "› post about " + a.composeRef
		}
		content = lipgloss.NewStyle().
			Width(a.width).
			Height(a.height-3).
			Align(lipgloss.Center, lipgloss.Center).
			Render(
				lipgloss.JoinVertical(
					lipgloss.Center,
					TitleStyle.Render(heading),
					"",
					a.commentInput.View(),
					"",
					HelpStyle.Render("Enter: publish • Esc: cancel"),
				),
			)
	}

	statusBar := a.renderStatusBar()
	if statusBar != "" {
		separatorWidth := a.width - 2
		if separatorWidth < 0 {
			separatorWidth = 0
		}
		separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))
		return lipgloss.JoinVertical(lipgloss.Top, content, separator, statusBar)
	}

	return content
}

func (a *App) renderInputOverList(header string, input *textinput.Model, listView string) string {
	inputWidth := a.width - 8
	if inputWidth < 10 {
		inputWidth = a.width - 4
	}
	input.Width = inputWidth

	borderColor := MutedColor
	if input.Focused() {
		borderColor = AccentColor
	}

	framed := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(inputWidth + 4).
		Render(input.View())

	body := lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render(header),
		"",
		framed,
		"",
		listView,
	)

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height - 3).
		MaxHeight(a.height - 3).
		Render(body)
}

func (a *App) renderStatusBar() string {
	if a.err != nil {
		return StatusBarStyle.Width(a.width).Render(
			ErrorMessageStyle.Render("✗ " + a.err.Error()))
	}

	if a.status != "" {
		return StatusBarStyle.Width(a.width).Render(
			StatusSuccessStyle.Render(a.status))
	}

	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return StatusBarStyle.Width(a.width).Render(strings.Join(commands, " • "))
}

type feedLoadedMsg struct {
	gen  int
	feed *feed.AssembledFeed
	err  error
}

type usersLoadedMsg struct {
	users []content.User
	err   error
}

type moviesLoadedMsg struct {
	movies []catalog.Movie
	err    error
}

type detailsRenderedMsg struct {
	ref     string
	content string
	poster  string
	err     error
}

type discoverResultsMsg struct {
	movies []catalog.Movie
	err    error
}

type profileRenderedMsg struct {
	user    *content.User
	content string
	err     error
}

type loginResultMsg struct {
	session *content.Session
	err     error
}

type loggedOutMsg struct {
	err error
}

type relationshipsMsg struct {
	user *content.User
	note string
	err  error
}

type reviewSubmittedMsg struct {
	err error
}

type postSubmittedMsg struct {
	err error
}

type searchResultsMsg struct {
	results []searchResultItem
}

type statusExpiredMsg struct {
	seq int
}

type errorMsg struct {
	err error
}
