package shparse_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/shparse"
	"github.com/zjrosen/cmdhl/internal/styles"
)

// styleAt returns the style painted last over byte pos.
func styleAt(spans []highlight.Span, pos int) string {
	style := ""
	for _, s := range spans {
		if s.Start <= pos && pos < s.Finish {
			style = s.Style
		}
	}
	return style
}

func highlightText(t *testing.T, src string, opts shparse.Options) []highlight.Span {
	t.Helper()
	reg, err := styles.FromPreset("default")
	require.NoError(t, err)
	set, err := rules.Default(reg)
	require.NoError(t, err)

	_, tree := shparse.Parse(src, opts)
	return highlight.Run(set, tree, src, highlight.ApplyOptions{})
}

func TestDefaultRules_OverTokenizer(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		opts   shparse.Options
		styles map[int]string
	}{
		{
			name: "quoted substitution",
			src:  `echo "a$(ls)b"`,
			styles: map[int]string{
				0:  styles.NameCommand,
				5:  styles.NameString,
				6:  styles.NameString,
				7:  styles.NameSubstDelim,
				8:  styles.NameSubstDelim,
				9:  styles.NameCommand,
				11: styles.NameSubstDelim,
				12: styles.NameString,
				13: styles.NameString,
			},
		},
		{
			name: "flag with value",
			src:  "ls -x=value",
			styles: map[int]string{
				0: styles.NameCommand,
				3: styles.NameFlag,
				4: styles.NameFlag,
				5: "",
				6: styles.NameFlagValue,
			},
		},
		{
			name: "heredoc",
			src:  "cat <<EOF\nhi\nEOF",
			styles: map[int]string{
				4:  styles.NameRedirect,
				6:  styles.NameHeredocTag,
				10: styles.NameHeredocBody,
				13: styles.NameHeredocTag,
			},
		},
		{
			name: "redirect and pipeline",
			src:  "ls > out | wc",
			styles: map[int]string{
				3:  styles.NameRedirect,
				9:  styles.NameOperator,
				11: styles.NameCommand,
			},
		},
		{
			name: "variables",
			src:  `echo $HOME "${x}"`,
			styles: map[int]string{
				5:  styles.NameVariable,
				6:  styles.NameVariable,
				12: styles.NameVariable,
				14: styles.NameVariable,
				16: styles.NameString,
			},
		},
		{
			name: "assignment and wrapped command",
			src:  "FOO=1 sudo -E make",
			styles: map[int]string{
				0:  styles.NameVariable,
				4:  "",
				6:  styles.NameCommand,
				11: styles.NameFlag,
				14: styles.NameCommand,
			},
		},
		{
			name: "keywords",
			src:  "if true; then ls; fi",
			styles: map[int]string{
				0:  styles.NameKeyword,
				3:  styles.NameCommand,
				7:  styles.NameOperator,
				9:  styles.NameKeyword,
				18: styles.NameKeyword,
			},
		},
		{
			name: "unterminated quote",
			src:  `echo "abc`,
			styles: map[int]string{
				5: styles.NameString,
				8: styles.NameString,
			},
		},
		{
			name: "escape",
			src:  `echo a\ b`,
			styles: map[int]string{
				6: styles.NameEscape,
				7: styles.NameEscape,
				8: "",
			},
		},
		{
			name: "comment outranks everything",
			src:  `ls # "x" $y`,
			opts: shparse.Options{Comments: true},
			styles: map[int]string{
				3: styles.NameComment,
				5: styles.NameComment,
				9: styles.NameComment,
			},
		},
		{
			name: "lexer error",
			src:  "| ls",
			styles: map[int]string{
				0: styles.NameError,
				2: styles.NameCommand,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := highlightText(t, tt.src, tt.opts)
			for pos, want := range tt.styles {
				require.Equal(t, want, styleAt(spans, pos), "byte %d (%q) of %q", pos, tt.src[pos:pos+1], tt.src)
			}
		})
	}
}

func TestDefaultRules_EmptyBuffer(t *testing.T) {
	require.Empty(t, highlightText(t, "", shparse.Options{}))
}
