package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const AppName = "cinefeed"

// ASCII art logo lines for cinefeed
var LogoLines = []string{
	" ▄████▄ ██ ███▄  ██ ▄████▄▄",
	"██▀     ██ ██▀██ ██ ██   ▀▀",
	"██      ██ ██ ▀█▄██ ██▀▀▀",
	"██▄     ██ ██   ███ ██",
	" ▀████▀ ██ ██    ██ ██  feed",
}

const CompactLogo = `cinefeed ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#F5C518"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#F5C518"),
}

// Brand colors. Gold for the marquee, teal for the lobby.
var (
	PrimaryColor   = lipgloss.Color("#F5C518") // Marquee gold
	SecondaryColor = lipgloss.Color("#4ECDC4") // Teal
	AccentColor    = lipgloss.Color("#95E1D3") // Mint

	BackgroundColor = lipgloss.Color("#1A1A2E") // Deep night
	SurfaceColor    = lipgloss.Color("#16213E") // Midnight blue
	TextColor       = lipgloss.Color("#EAEAEA") // Soft white
	MutedColor      = lipgloss.Color("#94A3B8") // Muted gray-blue

	RatingColor    = lipgloss.Color("#FFE66D") // Star rating yellow
	BookmarkColor  = lipgloss.Color("#FF6B6B") // Bookmark coral
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	SuccessColor   = lipgloss.Color("#10B981") // Green
	HighlightColor = lipgloss.Color("#FF6B6B") // Selection coral
)

// Styled components
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Bold(true).
			Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	RatingStyle = lipgloss.NewStyle().
			Foreground(RatingColor).
			Bold(true)

	BookmarkStyle = lipgloss.NewStyle().
			Foreground(BookmarkColor).
			Bold(true)

	MovieTitleStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	AuthorStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	TimeStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Faint(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	EmptyStyle = lipgloss.NewStyle()
)

// ApplyTheme overrides the default palette with configured colors. Empty
// values keep the defaults.
func ApplyTheme(colors map[string]string) {
	set := func(dst *lipgloss.Color, key string) {
		if v, ok := colors[key]; ok && v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, "primary")
	set(&SecondaryColor, "secondary")
	set(&AccentColor, "accent")
	set(&TextColor, "text")
	set(&MutedColor, "muted")
	set(&ErrorColor, "error")
	set(&SuccessColor, "success")
	set(&HighlightColor, "highlight")
	set(&BackgroundColor, "background")
}

func GetWelcomeMessage() string {
	return GetCompactBanner("ctrl+r loads the public feed • ctrl+l logs in")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

func ShowBanner(version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    Movie Review Feed %s", versionTag))
	} else {
		lines = append(lines, "    Movie Review Feed")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		colorIdx := i % len(BannerColors)
		style := lipgloss.NewStyle().
			Foreground(BannerColors[colorIdx]).
			Bold(i < len(LogoLines))

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(separator))
}
