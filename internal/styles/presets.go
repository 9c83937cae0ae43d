package styles

import "sort"

// Style names used by the built-in rule set.
const (
	NameNormal      = "normal"
	NameCommand     = "command"
	NameString      = "string"
	NameVariable    = "variable"
	NameComment     = "comment"
	NameOperator    = "operator"
	NameRedirect    = "redirect"
	NameFlag        = "flag"
	NameFlagValue   = "flag_value"
	NameHeredocTag  = "heredoc_tag"
	NameHeredocBody = "heredoc_body"
	NameEscape      = "escape"
	NameError       = "error"
	NameSubstDelim  = "substitution"
	NameKeyword     = "keyword"
)

// Preset is a complete named style theme.
type Preset struct {
	Name        string
	Description string
	Styles      map[string]Style
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":          DefaultPreset,
	"catppuccin-mocha": CatppuccinMochaPreset,
	"high-contrast":    HighContrastPreset,
	"plain":            PlainPreset,
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reset is the style that returns text to the terminal default.
var reset = Style{
	Fg:            ResetColor,
	Bg:            ResetColor,
	Bold:          Bool(false),
	Dim:           Bool(false),
	Italic:        Bool(false),
	Underline:     Bool(false),
	Strikethrough: Bool(false),
	Reverse:       Bool(false),
	Blink:         Bool(false),
}

// DefaultPreset uses the basic 16 terminal colours so it follows the user's
// terminal palette.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Terminal palette colours",
	Styles: map[string]Style{
		NameNormal:      reset,
		NameCommand:     {Fg: "green", Bold: Bool(true)},
		NameString:      {Fg: "yellow"},
		NameVariable:    {Fg: "magenta"},
		NameComment:     {Fg: "gray", Italic: Bool(true)},
		NameOperator:    {Fg: "cyan"},
		NameRedirect:    {Fg: "cyan", Bold: Bool(true)},
		NameFlag:        {Fg: "blue"},
		NameFlagValue:   {Fg: "bright_blue", Italic: Bool(true)},
		NameHeredocTag:  {Fg: "magenta", Bold: Bool(true)},
		NameHeredocBody: {Fg: "yellow", Dim: Bool(true)},
		NameEscape:      {Fg: "bright_magenta"},
		NameError:       {Fg: "red", Underline: Bool(true)},
		NameSubstDelim:  {Fg: "bright_cyan", Bold: Bool(true)},
		NameKeyword:     {Fg: "blue", Bold: Bool(true)},
	},
}

// CatppuccinMochaPreset uses the Catppuccin Mocha palette.
var CatppuccinMochaPreset = Preset{
	Name:        "catppuccin-mocha",
	Description: "Soothing pastel theme for dark terminals",
	Styles: map[string]Style{
		NameNormal:      reset,
		NameCommand:     {Fg: "#A6E3A1", Bold: Bool(true)}, // green
		NameString:      {Fg: "#F9E2AF"},                   // yellow
		NameVariable:    {Fg: "#CBA6F7"},                   // mauve
		NameComment:     {Fg: "#6C7086", Italic: Bool(true)},
		NameOperator:    {Fg: "#94E2D5"}, // teal
		NameRedirect:    {Fg: "#89DCEB", Bold: Bool(true)},
		NameFlag:        {Fg: "#89B4FA"}, // blue
		NameFlagValue:   {Fg: "#FAB387"}, // peach
		NameHeredocTag:  {Fg: "#F5C2E7", Bold: Bool(true)},
		NameHeredocBody: {Fg: "#F9E2AF", Dim: Bool(true)},
		NameEscape:      {Fg: "#F5E0DC"},
		NameError:       {Fg: "#F38BA8", Underline: Bool(true)},
		NameSubstDelim:  {Fg: "#74C7EC", Bold: Bool(true)},
		NameKeyword:     {Fg: "#CBA6F7", Bold: Bool(true)},
	},
}

// HighContrastPreset leans on bold and reverse video.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "Bold attributes for low colour terminals",
	Styles: map[string]Style{
		NameNormal:      reset,
		NameCommand:     {Fg: "bright_white", Bold: Bool(true), Underline: Bool(true)},
		NameString:      {Fg: "bright_yellow"},
		NameVariable:    {Fg: "bright_magenta", Bold: Bool(true)},
		NameComment:     {Fg: "white", Dim: Bool(true)},
		NameOperator:    {Fg: "bright_cyan", Bold: Bool(true)},
		NameRedirect:    {Fg: "bright_cyan", Bold: Bool(true)},
		NameFlag:        {Fg: "bright_blue", Bold: Bool(true)},
		NameFlagValue:   {Fg: "bright_white"},
		NameHeredocTag:  {Fg: "bright_magenta", Bold: Bool(true)},
		NameHeredocBody: {Fg: "bright_yellow"},
		NameEscape:      {Fg: "bright_magenta"},
		NameError:       {Fg: "bright_white", Bg: "red", Bold: Bool(true)},
		NameSubstDelim:  {Reverse: Bool(true)},
		NameKeyword:     {Fg: "bright_blue", Bold: Bool(true), Underline: Bool(true)},
	},
}

// PlainPreset registers every built-in name without attributes, for
// terminals without colour and for tests.
var PlainPreset = Preset{
	Name:        "plain",
	Description: "No colours",
	Styles: map[string]Style{
		NameNormal:      {},
		NameCommand:     {},
		NameString:      {},
		NameVariable:    {},
		NameComment:     {},
		NameOperator:    {},
		NameRedirect:    {},
		NameFlag:        {},
		NameFlagValue:   {},
		NameHeredocTag:  {},
		NameHeredocBody: {},
		NameEscape:      {},
		NameError:       {},
		NameSubstDelim:  {},
		NameKeyword:     {},
	},
}
