package shparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/cmdhl/internal/token"
)

// kinds returns the kinds of the root tokens.
func kinds(tree token.Tree) []string {
	out := make([]string, len(tree))
	for i := range tree {
		out[i] = tree[i].Kind
	}
	return out
}

func parse(t *testing.T, src string) (bool, token.Tree) {
	t.Helper()
	complete, tree := Parse(src, Options{})
	require.NoError(t, token.Validate(tree, len(src)))
	return complete, tree
}

func TestParse_QuotedSubstitution(t *testing.T) {
	src := `echo "a$(ls)b"`
	complete, tree := parse(t, src)

	require.True(t, complete)
	require.Equal(t, token.Tree{
		{Start: 0, Finish: 4, Kind: KindCommand},
		{Start: 5, Finish: 14, Kind: KindString, Nested: []token.Token{
			{Start: 5, Finish: 6, Kind: InnerDnull},
			{Start: 6, Finish: 7},
			{Start: 7, Finish: 12, Kind: KindSubstitution, Nested: []token.Token{
				{Start: 7, Finish: 8, Kind: InnerQstring},
				{Start: 8, Finish: 9, Kind: InnerInpar},
				{Start: 9, Finish: 11, Kind: KindCommand},
				{Start: 11, Finish: 12, Kind: InnerOutpar},
			}},
			{Start: 12, Finish: 13},
			{Start: 13, Finish: 14, Kind: InnerDnull},
		}},
	}, tree)
}

func TestParse_PlainWordsHaveNoNested(t *testing.T) {
	complete, tree := parse(t, "ls -x=value")

	require.True(t, complete)
	require.Equal(t, []string{KindCommand, KindString}, kinds(tree))
	require.Nil(t, tree[1].Nested)
	require.Equal(t, "-x=value", tree[1].Text("ls -x=value"))
}

func TestParse_Empty(t *testing.T) {
	for _, src := range []string{"", "   ", "\t", "\n \n"} {
		complete, tree := parse(t, src)
		require.False(t, complete, "%q", src)
		require.Empty(t, tree, "%q", src)
	}
}

func TestParse_Completeness(t *testing.T) {
	tests := []struct {
		src      string
		complete bool
	}{
		{"ls", true},
		{"ls -la /tmp", true},
		{"a && b", true},
		{"a &", true},
		{"a;", true},
		{"echo hi |", false},
		{"a &&", false},
		{"a ||", false},
		{"a |\n", false},
		{"echo \\", false},
		{"echo \\\n", false},
		{"echo 'abc", false},
		{`echo "abc`, false},
		{"echo $(ls", false},
		{"echo `ls", false},
		{"echo ${HOME", false},
		{"cat <<EOF", false},
		{"cat <<EOF\nbody", false},
		{"cat <<EOF\nbody\nEOF", true},
		{"if true; then", false},
		{"if true; then echo; fi", true},
		{"while true; do", false},
		{"for x in a b; do echo $x; done", true},
		{"case $x in", false},
		{"{ ls", false},
		{"( ls", false},
		{"echo >", false},
		{"!", false},
		{"arr=(1 2", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			complete, _ := parse(t, tt.src)
			require.Equal(t, tt.complete, complete)
		})
	}
}

func TestParse_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a | b", []string{KindCommand, KindBar, KindCommand}},
		{"a |& b", []string{KindCommand, KindBar, KindCommand}},
		{"a || b", []string{KindCommand, KindDbar, KindCommand}},
		{"a && b", []string{KindCommand, KindDamper, KindCommand}},
		{"a & b", []string{KindCommand, KindAmper, KindCommand}},
		{"a; b", []string{KindCommand, KindSeper, KindCommand}},
		{"a\nb", []string{KindCommand, KindSeper, KindCommand}},
		{"(a) | b", []string{KindInpar, KindCommand, KindOutpar, KindBar, KindCommand}},
		{"| a", []string{KindLexErr, KindCommand}},
		{"a ) b", []string{KindCommand, KindLexErr, KindString}},
		{"! a", []string{KindBang, KindCommand}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, tree := parse(t, tt.src)
			require.Equal(t, tt.want, kinds(tree))
		})
	}
}

func TestParse_Keywords(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{
			"if true; then echo; fi",
			[]string{KindIf, KindCommand, KindSeper, KindThen, KindCommand, KindSeper, KindFi},
		},
		{
			"for x in a; do ls; done",
			[]string{KindFor, KindString, KindString, KindString, KindSeper, KindDo, KindCommand, KindSeper, KindDone},
		},
		{
			"case $x in a|b) echo;; esac",
			[]string{KindCase, KindString, KindString, KindString, KindBar, KindString, KindOutpar, KindCommand, KindDsemi, KindEsac},
		},
		{
			"foo() { ls; }",
			[]string{KindCommand, KindInpar, KindOutpar, KindInbrace, KindCommand, KindSeper, KindOutbrace},
		},
		{
			"function foo { ls; }",
			[]string{KindFunc, KindString, KindInbrace, KindCommand, KindSeper, KindOutbrace},
		},
		{
			"echo if then",
			[]string{KindCommand, KindString, KindString},
		},
		{
			"fi",
			[]string{KindLexErr},
		},
		{
			"time ls",
			[]string{KindTime, KindCommand},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, tree := parse(t, tt.src)
			require.Equal(t, tt.want, kinds(tree))
		})
	}
}

func TestParse_Assignments(t *testing.T) {
	src := "FOO=bar arr=(1 2) make all"
	complete, tree := parse(t, src)

	require.True(t, complete)
	require.Equal(t, []string{KindEnv, KindEnvArray, KindCommand, KindString}, kinds(tree))
	require.Equal(t, "arr=(1 2)", tree[1].Text(src))
	require.Equal(t, []token.Token{
		{Start: 8, Finish: 12},
		{Start: 12, Finish: 13, Kind: InnerInpar},
		{Start: 13, Finish: 14, Kind: KindString},
		{Start: 15, Finish: 16, Kind: KindString},
		{Start: 16, Finish: 17, Kind: InnerOutpar},
	}, tree[1].Nested)

	_, tree = parse(t, "echo FOO=bar")
	require.Equal(t, []string{KindCommand, KindString}, kinds(tree))

	_, tree = parse(t, "a[1]+=x")
	require.Equal(t, []string{KindEnv}, kinds(tree))
}

func TestParse_Redirects(t *testing.T) {
	src := "echo hi > out.txt 2>&1 <in &>/dev/null"
	complete, tree := parse(t, src)

	require.True(t, complete)
	require.Equal(t, []string{KindCommand, KindString, KindRedirect, KindRedirect, KindRedirect, KindRedirect}, kinds(tree))

	require.Equal(t, []token.Token{
		{Start: 8, Finish: 9, Kind: KindOutang},
		{Start: 10, Finish: 17, Kind: KindString},
	}, tree[2].Nested)
	require.Equal(t, "2>&", tree[3].Nested[0].Text(src))
	require.Equal(t, KindOutangAmp, tree[3].Nested[0].Kind)
	require.Equal(t, "1", tree[3].Nested[1].Text(src))
	require.Equal(t, KindInang, tree[4].Nested[0].Kind)
	require.Equal(t, KindAmpOutang, tree[5].Nested[0].Kind)
	require.Equal(t, "/dev/null", tree[5].Nested[1].Text(src))
}

func TestParse_RedirectOperators(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{"a > f", KindOutang},
		{"a >> f", KindDoutang},
		{"a < f", KindInang},
		{"a <> f", KindInoutang},
		{"a <& 3", KindInangAmp},
		{"a >| f", KindOutangBang},
		{"a >! f", KindOutangBang},
		{"a <<< word", KindTrinang},
		{"a &>> f", KindAmpOutang},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, tree := parse(t, tt.src)
			require.Len(t, tree, 2)
			require.Equal(t, KindRedirect, tree[1].Kind)
			require.Equal(t, tt.kind, tree[1].Nested[0].Kind)
		})
	}
}

func TestParse_RedirectMissingTarget(t *testing.T) {
	_, tree := parse(t, "a > ; b")
	require.Equal(t, []string{KindCommand, KindLexErr, KindSeper, KindCommand}, kinds(tree))
}

func TestParse_Heredoc(t *testing.T) {
	src := "cat <<EOF\nhello $USER\nEOF"
	complete, tree := parse(t, src)

	require.True(t, complete)
	require.Equal(t, token.Tree{
		{Start: 0, Finish: 3, Kind: KindCommand},
		{Start: 4, Finish: 9, Kind: KindRedirect, Nested: []token.Token{
			{Start: 4, Finish: 6, Kind: KindDinang},
			{Start: 6, Finish: 9, Kind: KindHeredocOpen},
		}},
		{Start: 9, Finish: 10, Kind: KindSeper},
		{Start: 10, Finish: 22, Kind: KindHeredocBody, Nested: []token.Token{
			{Start: 10, Finish: 16},
			{Start: 16, Finish: 17, Kind: InnerQstring},
			{Start: 17, Finish: 22},
		}},
		{Start: 22, Finish: 25, Kind: KindHeredocClose},
	}, tree)
}

func TestParse_HeredocVariants(t *testing.T) {
	t.Run("quoted tag does not expand", func(t *testing.T) {
		src := "cat <<'EOF'\n$x\nEOF\n"
		complete, tree := parse(t, src)
		require.True(t, complete)
		require.Equal(t, []string{KindCommand, KindRedirect, KindSeper, KindHeredocBody, KindHeredocClose, KindSeper}, kinds(tree))
		require.Nil(t, tree[3].Nested)
	})

	t.Run("dash strips leading tabs from the delimiter", func(t *testing.T) {
		src := "cat <<-END\n\tx\n\tEND"
		complete, tree := parse(t, src)
		require.True(t, complete)
		close := tree[len(tree)-1]
		require.Equal(t, KindHeredocClose, close.Kind)
		require.Equal(t, "END", close.Text(src))
	})

	t.Run("two heredocs on one line", func(t *testing.T) {
		src := "cat <<A <<B\na\nA\nb\nB"
		complete, tree := parse(t, src)
		require.True(t, complete)
		require.Equal(t, []string{
			KindCommand, KindRedirect, KindRedirect, KindSeper,
			KindHeredocBody, KindHeredocClose, KindHeredocBody, KindHeredocClose,
		}, kinds(tree))
	})

	t.Run("unterminated body", func(t *testing.T) {
		src := "cat <<EOF\nbody"
		complete, tree := parse(t, src)
		require.False(t, complete)
		require.Equal(t, KindHeredocBody, tree[len(tree)-1].Kind)
	})

	t.Run("commands after the delimiter", func(t *testing.T) {
		src := "cat <<EOF\nx\nEOF\nls"
		complete, tree := parse(t, src)
		require.True(t, complete)
		require.Equal(t, KindCommand, tree[len(tree)-1].Kind)
	})
}

func TestParse_WordMarks(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []string
	}{
		{"single quotes", "echo 'a b'", []string{InnerSnull, InnerText, InnerSnull}},
		{"unterminated single quote", "echo 'a", []string{InnerSnull, InnerText}},
		{"escape", `echo a\ b`, []string{InnerText, InnerBnull, InnerText}},
		{"variable", "echo $HOME/x", []string{InnerString, InnerText}},
		{"quoted variable", `echo "$x"`, []string{InnerDnull, InnerQstring, InnerText, InnerDnull}},
		{"braced variable", "echo ${HOME}", []string{InnerString, InnerInbrace, InnerText, InnerOutbrace}},
		{"ansi c quoting", `echo $'a\'b'`, []string{InnerString, InnerSnull, InnerText, InnerSnull}},
		{"tilde", "echo ~/x", []string{InnerTilde, InnerText}},
		{"globs", "echo *.g?", []string{InnerStar, InnerText, InnerQuest}},
		{"brace expansion", "echo {a,b}", []string{InnerInbrace, InnerText, InnerOutbrace}},
		{"lone dollar", "echo a$", nil},
		{"escape in double quotes", `echo "\$"`, []string{InnerDnull, InnerBnull, InnerText, InnerDnull}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tree := parse(t, tt.src)
			require.Len(t, tree, 2)
			var got []string
			for _, n := range tree[1].Nested {
				got = append(got, n.Kind)
			}
			require.Equal(t, tt.kinds, got)
		})
	}
}

func TestParse_Substitutions(t *testing.T) {
	t.Run("backticks", func(t *testing.T) {
		src := "echo `ls -l`"
		complete, tree := parse(t, src)
		require.True(t, complete)
		sub := tree[1].Nested[0]
		require.Equal(t, KindSubstitution, sub.Kind)
		require.Equal(t, []string{InnerTick, KindCommand, KindString, InnerTick}, kinds(sub.Nested))
	})

	t.Run("process substitution", func(t *testing.T) {
		src := "diff <(ls a) >(ls b)"
		complete, tree := parse(t, src)
		require.True(t, complete)
		require.Equal(t, []string{KindCommand, KindString, KindString}, kinds(tree))
		require.Equal(t, []string{InnerInangProc, InnerInpar, KindCommand, KindString, InnerOutpar}, kinds(tree[1].Nested[0].Nested))
		require.Equal(t, InnerOutangProc, tree[2].Nested[0].Nested[0].Kind)
	})

	t.Run("nested", func(t *testing.T) {
		src := "echo $(a $(b))"
		complete, tree := parse(t, src)
		require.True(t, complete)
		outer := tree[1].Nested[0]
		require.Equal(t, []string{InnerString, InnerInpar, KindCommand, KindString, InnerOutpar}, kinds(outer.Nested))
		inner := outer.Nested[3].Nested[0]
		require.Equal(t, "$(b)", inner.Text(src))
	})

	t.Run("subshell inside substitution", func(t *testing.T) {
		src := "echo $( (ls) )"
		complete, tree := parse(t, src)
		require.True(t, complete)
		require.Equal(t, []string{InnerString, InnerInpar, KindInpar, KindCommand, KindOutpar, InnerOutpar}, kinds(tree[1].Nested[0].Nested))
	})

	t.Run("case inside substitution", func(t *testing.T) {
		src := "echo $(case x in a) b;; esac)"
		complete, tree := parse(t, src)
		require.True(t, complete)
		sub := tree[1].Nested[0]
		require.Equal(t, InnerOutpar, sub.Nested[len(sub.Nested)-1].Kind)
		require.Equal(t, len(src), sub.Finish)
	})

	t.Run("arithmetic", func(t *testing.T) {
		src := "echo $((1+2))"
		complete, _ := parse(t, src)
		require.True(t, complete)
	})
}

func TestParse_Comments(t *testing.T) {
	src := "ls # list\necho #x"

	_, tree := parse(t, src)
	require.Equal(t, []string{KindCommand, KindString, KindString, KindSeper, KindCommand, KindString}, kinds(tree))

	complete, tree := New(Options{Comments: true}).Parse(src)
	require.NoError(t, token.Validate(tree, len(src)))
	require.True(t, complete)
	require.Equal(t, []string{KindCommand, KindComment, KindSeper, KindCommand, KindComment}, kinds(tree))
	require.Equal(t, "# list", tree[1].Text(src))

	_, tree = New(Options{Comments: true}).Parse("echo a#b")
	require.Equal(t, []string{KindCommand, KindString}, kinds(tree))
}

func TestParse_Unicode(t *testing.T) {
	src := `echo "héllo wörld" \é`
	complete, tree := parse(t, src)
	require.True(t, complete)
	require.Equal(t, []string{KindCommand, KindString, KindString}, kinds(tree))
	require.Equal(t, `\é`, tree[2].Text(src))
}

// shellInput generates short strings biased towards shell syntax.
func shellInput() *rapid.Generator[string] {
	pieces := []string{
		" ", "\t", "\n", "a", "ls", "echo", "x=1", "-f", "'", "\"", "\\", "$",
		"$(", "${", "`", "(", ")", "{", "}", "|", "||", "&", "&&", ";", ";;",
		"<", ">", ">>", "<<", "<<-", "<<<", "2>&1", "<(", "#", "*", "?", "~",
		"if", "then", "fi", "do", "done", "case", "in", "esac", "EOF", "é",
	}
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.SampledFrom(pieces), 0, 24).Draw(t, "parts")
		return strings.Join(parts, "")
	})
}

func TestParse_TreeIsValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := shellInput().Draw(t, "src")
		comments := rapid.Bool().Draw(t, "comments")

		complete, tree := Parse(src, Options{Comments: comments})

		if err := token.Validate(tree, len(src)); err != nil {
			t.Fatalf("invalid tree for %q: %v", src, err)
		}
		if strings.TrimSpace(src) == "" && (complete || len(tree) > 0) {
			t.Fatalf("blank input %q produced tokens", src)
		}
		if complete && len(tree) == 0 {
			t.Fatalf("complete parse of %q has no tokens", src)
		}
	})
}

func TestParse_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := shellInput().Draw(t, "src")
		c1, t1 := Parse(src, Options{})
		c2, t2 := Parse(src, Options{})
		if c1 != c2 {
			t.Fatalf("completeness differs for %q", src)
		}
		require.Equal(t, t1, t2)
	})
}
