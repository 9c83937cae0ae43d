package shparse

// Top-level token kinds. The upper-case names follow zsh's lexer tokens so
// that rule files written for zsh read the same here.
const (
	KindString   = "STRING"
	KindEnv      = "ENVSTRING"
	KindEnvArray = "ENVARRAY"
	KindSeper    = "SEPER"
	KindBar      = "BAR"
	KindDbar     = "DBAR"
	KindAmper    = "AMPER"
	KindDamper   = "DAMPER"
	KindBang     = "BANG"
	KindInpar    = "INPAR"
	KindOutpar   = "OUTPAR"
	KindInbrace  = "INBRACE"
	KindOutbrace = "OUTBRACE"
	KindDsemi    = "DSEMI"
	KindLexErr   = "LEXERR"

	KindIf    = "IF"
	KindThen  = "THEN"
	KindElse  = "ELSE"
	KindElif  = "ELIF"
	KindFi    = "FI"
	KindDo    = "DOLOOP"
	KindDone  = "DONE"
	KindWhile = "WHILE"
	KindUntil = "UNTIL"
	KindFor   = "FOR"
	KindCase  = "CASE"
	KindEsac  = "ESAC"
	KindFunc  = "FUNC"
	KindTime  = "TIME"
)

// Redirection operators.
const (
	KindOutang     = "OUTANG"     // >
	KindDoutang    = "DOUTANG"    // >>
	KindInang      = "INANG"      // <
	KindDinang     = "DINANG"     // <<
	KindDinangDash = "DINANGDASH" // <<-
	KindTrinang    = "TRINANG"    // <<<
	KindInoutang   = "INOUTANG"   // <>
	KindInangAmp   = "INANGAMP"   // <&
	KindOutangAmp  = "OUTANGAMP"  // >&
	KindAmpOutang  = "AMPOUTANG"  // &> and &>>
	KindOutangBang = "OUTANGBANG" // >| and >!
)

// Grouping kinds that have no zsh lexer equivalent.
const (
	KindCommand      = "command"
	KindComment      = "comment"
	KindRedirect     = "redirect"
	KindSubstitution = "substitution"
	KindHeredocOpen  = "heredoc_open_tag"
	KindHeredocBody  = "heredoc_body"
	KindHeredocClose = "heredoc_close_tag"
)

// Kinds of the tokens nested inside a word. Plain text runs have the empty
// kind.
const (
	InnerText       = ""
	InnerDnull      = "Dnull"      // "
	InnerSnull      = "Snull"      // '
	InnerBnull      = "Bnull"      // backslash
	InnerString     = "String"     // $
	InnerQstring    = "Qstring"    // $ inside double quotes
	InnerInpar      = "Inpar"      // ( after $, < or >
	InnerOutpar     = "Outpar"     // closing )
	InnerInbrace    = "Inbrace"    // {
	InnerOutbrace   = "Outbrace"   // }
	InnerTick       = "Tick"       // backtick
	InnerQtick      = "Qtick"      // backtick inside double quotes
	InnerInangProc  = "Inang"      // < of <(...)
	InnerOutangProc = "OutangProc" // > of >(...)
	InnerTilde      = "Tilde"      // leading ~
	InnerStar       = "Star"       // *
	InnerQuest      = "Quest"      // ?
)

// reserved maps reserved words to their kinds. They are only recognised
// unquoted and in command position.
var reserved = map[string]string{
	"if":       KindIf,
	"then":     KindThen,
	"else":     KindElse,
	"elif":     KindElif,
	"fi":       KindFi,
	"do":       KindDo,
	"done":     KindDone,
	"while":    KindWhile,
	"until":    KindUntil,
	"for":      KindFor,
	"select":   KindFor,
	"case":     KindCase,
	"esac":     KindEsac,
	"function": KindFunc,
	"time":     KindTime,
	"!":        KindBang,
	"{":        KindInbrace,
	"}":        KindOutbrace,
}

// redirOps lists redirection operators, longest first.
var redirOps = []struct {
	op   string
	kind string
}{
	{"&>>", KindAmpOutang},
	{"<<<", KindTrinang},
	{"<<-", KindDinangDash},
	{"<<", KindDinang},
	{"<>", KindInoutang},
	{"<&", KindInangAmp},
	{">>", KindDoutang},
	{">&", KindOutangAmp},
	{">|", KindOutangBang},
	{">!", KindOutangBang},
	{"&>", KindAmpOutang},
	{"<", KindInang},
	{">", KindOutang},
}
