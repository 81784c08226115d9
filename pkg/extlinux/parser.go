package extlinux

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/arducam/jetson-io/internal/constants"
)

var confLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `[ \t]*#[^\n]*`},
	{Name: "Directive", Pattern: `[ \t]*[^\s#][^\n]*`},
	{Name: "Blank", Pattern: `[ \t\r]+`},
	{Name: "EOL", Pattern: `\n`},
})

type confFile struct {
	Lines []string `parser:"(@Comment | @Directive | EOL)*"`
}

var confParser = participle.MustBuild[confFile](
	participle.Lexer(confLexer),
	participle.Elide("Blank"),
)

// Parse decodes an extlinux.conf. Directives before the first LABEL are
// global; everything after belongs to the last LABEL seen.
func Parse(text string) (*Config, error) {
	f, err := confParser.ParseString("extlinux.conf", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrBootConfig, err)
	}

	c := &Config{}
	var cur *Entry
	for _, line := range f.Lines {
		line = strings.TrimSpace(line)
		d := parseDirective(line)
		if strings.EqualFold(d.Key, "LABEL") {
			cur = &Entry{Label: d.Value}
			c.Entries = append(c.Entries, cur)
			continue
		}
		if cur == nil {
			c.Global = append(c.Global, d)
		} else {
			cur.Directives = append(cur.Directives, d)
		}
	}
	return c, nil
}

func parseDirective(line string) Directive {
	if strings.HasPrefix(line, "#") {
		return Directive{Comment: line}
	}
	fields := strings.Fields(line)
	key := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, key))
	// MENU takes a sub keyword: MENU LABEL, MENU TITLE, ...
	if strings.EqualFold(key, "MENU") && len(fields) > 1 {
		key = key + " " + fields[1]
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
	}
	return Directive{Key: strings.ToUpper(key), Value: rest}
}
