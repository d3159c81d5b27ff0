// Package styles provides the shared palette and styles for the ai_messenger UI.
package styles

import (
	"charm.land/lipgloss/v2"
)

// Color palette - ANSI 256 colors used throughout the application
var (
	// Primary accent color (purple)
	ColorAccent = lipgloss.Color("141")

	// Text colors
	ColorText       = lipgloss.Color("252") // Primary text
	ColorTextMuted  = lipgloss.Color("245") // Secondary/muted text
	ColorTextBright = lipgloss.Color("15")  // Bright/highlighted text

	// Semantic colors
	ColorError   = lipgloss.Color("196")
	ColorWarning = lipgloss.Color("214")
	ColorSuccess = lipgloss.Color("42")

	// Message bubbles
	ColorUserBubble    = lipgloss.Color("63")  // Sent by the local user
	ColorAIBubble      = lipgloss.Color("30")  // Assistant replies
	ColorContactBubble = lipgloss.Color("237") // Human contacts

	ColorPlaceholder = lipgloss.Color("240")

	// Border colors
	ColorBorder      = lipgloss.Color("141") // Focused pane (matches accent)
	ColorBorderMuted = lipgloss.Color("62")  // Unfocused pane
)

// Panel/Box styles
var (
	// PaneStyle frames the conversation list and chat panes.
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderMuted)

	// PaneFocusedStyle frames the pane receiving keys.
	PaneFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder)
)

// Text styles
var (
	// TitleStyle for panel/section titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// TextMutedStyle for secondary/helper text
	TextMutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	// TextBoldStyle for emphasized text
	TextBoldStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)
)

// Selection and highlighting
var (
	// SelectedStyle for the highlighted list row
	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright).
			Background(ColorAccent).
			Bold(true)

	// ActiveStyle marks the conversation currently open in the chat pane.
	ActiveStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)

// Input styles
var (
	// FilterStyle for the search query
	FilterStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	// PlaceholderStyle for placeholder text
	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorPlaceholder).
				Italic(true)
)

// Feedback styles
var (
	// FooterStyle for footer/help text
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	// TypingStyle for the pending reply indicator
	TypingStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Italic(true)
)

// Chat styles
var (
	// AvatarStyle is the badge next to a conversation name.
	AvatarStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright).
			Background(ColorBorderMuted).
			Bold(true).
			Padding(0, 1)

	// AvatarAIStyle is the badge of AI conversations.
	AvatarAIStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright).
			Background(ColorAIBubble).
			Bold(true).
			Padding(0, 1)

	UserBubbleStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright).
			Background(ColorUserBubble).
			Padding(0, 1)

	AIBubbleStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright).
			Background(ColorAIBubble).
			Padding(0, 1)

	ContactBubbleStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorContactBubble).
				Padding(0, 1)

	// ErrorBubbleStyle marks assistant replies that report a failure.
	ErrorBubbleStyle = lipgloss.NewStyle().
				Foreground(ColorTextBright).
				Background(ColorError).
				Padding(0, 1)

	// TimestampStyle for message and list timestamps
	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Status bar styles
var (
	// StatusBarStyle is the default status bar style (purple theme)
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	// StatusBarStyleCyan is the cyan theme variant
	StatusBarStyleCyan = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#00B8D4")).
				Padding(0, 1).
				Bold(true)

	// StatusBarStyleDark is the dark theme variant
	StatusBarStyleDark = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#D0D0D0")).
				Background(lipgloss.Color("#3C3C3C")).
				Padding(0, 1)
)
