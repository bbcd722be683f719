// Package config implements §6's hierarchical braced configuration
// language: a hand-written scanner/parser (no generator fits a grammar
// this small) turning `routing { bgp { global { as 100; } } }` into the
// ordered `set <path> <value>` command stream §8 scenario 6 names, plus
// a Manager dispatching that stream through a startup-built handler
// table with cache-overlay/atomic-commit semantics (§7).
package config

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Command is one parsed `set <path> <value>` line.
type Command struct {
	Path  string
	Value string
}

// Parse tokenizes and parses src, returning every leaf statement in
// source order. A leaf is the last token before a `;`; every token
// before it, prefixed by the enclosing blocks' own leading tokens,
// forms the path.
func Parse(src string) ([]Command, error) {
	p := &parser{toks: tokenize(src)}
	return p.parseBlock(nil)
}

func tokenize(src string) []string {
	var toks []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, buf.String())
			buf.Reset()
		}
	}
	for _, r := range src {
		switch {
		case r == '{' || r == '}' || r == ';':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return toks
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, true
}

// parseBlock consumes tokens until a matching "}" (or EOF, only valid
// at the top level where prefix is empty), returning every leaf found
// at this level or nested beneath it.
func (p *parser) parseBlock(prefix []string) ([]Command, error) {
	var out []Command
	var pending []string

	for {
		tok, ok := p.next()
		if !ok {
			if len(prefix) > 0 {
				return nil, errors.New("config: unexpected end of input, missing }")
			}
			return out, nil
		}
		switch tok {
		case "{":
			sub, err := p.parseBlock(append(append([]string{}, prefix...), pending...))
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			pending = nil
		case "}":
			if len(prefix) == 0 {
				return nil, errors.New("config: unexpected }")
			}
			return out, nil
		case ";":
			if len(pending) == 0 {
				return nil, errors.New("config: empty leaf statement")
			}
			value := pending[len(pending)-1]
			path := append(append([]string{}, prefix...), pending[:len(pending)-1]...)
			out = append(out, Command{Path: strings.Join(path, " "), Value: value})
			pending = nil
		default:
			pending = append(pending, tok)
		}
	}
}
