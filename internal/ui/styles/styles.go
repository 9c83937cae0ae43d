// Package styles contains the Lip Gloss styles for the editor chrome. The
// colours of the highlighted buffer itself come from the theme registry.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}
	PromptColor        = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	// Toast notification colors
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = StatusWarningColor

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	StatusCompleteStyle   = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	StatusIncompleteStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)

	PromptStyle = lipgloss.NewStyle().Foreground(PromptColor).Bold(true)

	// Span table
	SpanHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(OverlayTitleColor)
	SpanRowStyle    = lipgloss.NewStyle().Foreground(TextMutedColor)
)
