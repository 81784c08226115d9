package pinctrl

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/arducam/jetson-io/internal/constants"
)

// PinConfig is the decoded configuration of one pin group.
type PinConfig struct {
	Name        string
	Function    string
	Tristate    string
	InputEnable string
	Sfio        string
}

// Function is one entry of the pinmux functions table.
type Function struct {
	Name   string
	Groups []string
}

// pinconf-groups is line oriented: a group header ("12 (soc_gpio00_pa0):")
// followed by tab indented key=value settings.
var pinconfLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Group", Pattern: `[0-9]+ \([^)\n]*\):`},
	{Name: "Setting", Pattern: `\t[A-Za-z0-9_-]+=[^\n]*`},
	{Name: "Text", Pattern: `[^\n]+`},
	{Name: "EOL", Pattern: `\n+`},
})

type pinconfDump struct {
	Preamble []string        `parser:"(@Text | EOL)*"`
	Groups   []*pinconfGroup `parser:"@@*"`
}

type pinconfGroup struct {
	Head     string   `parser:"@Group"`
	Settings []string `parser:"(@Setting | @Text | EOL)*"`
}

var functionsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.-]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:,=\[\]]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

type functionTable struct {
	Entries []*functionEntry `parser:"@@*"`
}

type functionEntry struct {
	Index  int      `parser:"'function' @Int? ':'"`
	Name   string   `parser:"@Ident ','"`
	Groups []string `parser:"'groups' '=' '[' @Ident* ']'"`
}

var (
	pinconfParser   = participle.MustBuild[pinconfDump](participle.Lexer(pinconfLexer))
	functionsParser = participle.MustBuild[functionTable](
		participle.Lexer(functionsLexer),
		participle.Elide("Whitespace"),
	)
)

// ParsePinconfGroups decodes the pinconf-groups debugfs file. Groups missing
// any of function, tristate, enable-input or gpio-mode are skipped.
func ParsePinconfGroups(text string) ([]PinConfig, error) {
	dump, err := pinconfParser.ParseString("pinconf-groups", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrMalformedPinctrl, err)
	}

	var confs []PinConfig
	for _, g := range dump.Groups {
		name, err := groupName(g.Head)
		if err != nil {
			return nil, err
		}
		c := PinConfig{Name: name}
		for _, s := range g.Settings {
			key, value, found := strings.Cut(strings.TrimSpace(s), "=")
			if !found {
				continue
			}
			switch key {
			case "gpio-mode":
				c.Sfio = value
			case "tristate":
				c.Tristate = value
			case "enable-input":
				c.InputEnable = value
			case "function", "func":
				if c.Function == "" {
					c.Function = value
				}
			}
		}
		if c.Function == "" || c.Tristate == "" || c.InputEnable == "" || c.Sfio == "" {
			continue
		}
		confs = append(confs, c)
	}
	return confs, nil
}

func groupName(head string) (string, error) {
	open := strings.Index(head, "(")
	end := strings.LastIndex(head, ")")
	if open < 0 || end < open {
		return "", fmt.Errorf("%w: bad group header %q", constants.ErrMalformedPinctrl, head)
	}
	return head[open+1 : end], nil
}

// ParseFunctions decodes the pinmux-functions debugfs file.
func ParseFunctions(text string) ([]Function, error) {
	table, err := functionsParser.ParseString("pinmux-functions", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrMalformedPinctrl, err)
	}
	functions := make([]Function, 0, len(table.Entries))
	for _, e := range table.Entries {
		functions = append(functions, Function{Name: e.Name, Groups: e.Groups})
	}
	return functions, nil
}

// FunctionsForPin returns the sorted names of the functions whose groups include pin.
func FunctionsForPin(functions []Function, pin string) []string {
	var names []string
	for _, f := range functions {
		for _, g := range f.Groups {
			if g == pin {
				names = append(names, f.Name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

var pinNodeRe = regexp.MustCompile(`^(.+)-pin([0-9]+)`)

// ParsePinNode splits a pin node name of the form <prefix>-pin<N>[suffix].
func ParsePinNode(name string) (prefix string, pin int, ok bool) {
	m := pinNodeRe.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	pin, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], pin, true
}

// ParsePinFromPath returns the pin index of the first component of a node
// path that is a pin node for prefix.
func ParsePinFromPath(prefix, nodePath string) (int, bool) {
	for _, c := range strings.Split(nodePath, "/") {
		p, pin, ok := ParsePinNode(c)
		if ok && p == prefix {
			return pin, true
		}
	}
	return 0, false
}
