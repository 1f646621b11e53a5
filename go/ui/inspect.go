package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/lunixbochs/pecorn/go/coff"
	"github.com/lunixbochs/pecorn/go/models"
)

const inspectHelp = `Commands:
  ls                 list sections
  show <idx|name>    show every field of one section
  flags <hex>        decode a characteristics value
  help               show this message
  quit               exit
`

// Inspector is an interactive browser over a loaded image's section table.
type Inspector struct {
	l       models.Loader
	printer *models.SectionPrinter
	rl      *readline.Instance
}

func NewInspector(l models.Loader, config *models.Config) *Inspector {
	return &Inspector{
		l:       l,
		printer: &models.SectionPrinter{Color: config.Color, Flags: config.Flags, Raw: config.Raw},
	}
}

// lookup finds a section by 1-based index or by resolved name.
func (in *Inspector) lookup(arg string) (*coff.SectionTable, error) {
	secs := in.l.Sections()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(secs) {
			return nil, errors.Errorf("no section %d (have %d)", n, len(secs))
		}
		return secs[n-1], nil
	}
	if s := in.l.Section(arg); s != nil {
		return s, nil
	}
	return nil, errors.Errorf("no section named %q", arg)
}

// Exec runs a single command line, writing output to w.
func (in *Inspector) Exec(line string, w io.Writer) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "ls":
		in.printer.Fprint(w, in.l.Sections())
	case "show":
		if len(args) != 2 {
			return false, errors.New("usage: show <idx|name>")
		}
		s, err := in.lookup(args[1])
		if err != nil {
			return false, err
		}
		in.printer.Detail(w, s)
	case "flags":
		if len(args) != 2 {
			return false, errors.New("usage: flags <hex>")
		}
		c, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 32)
		if err != nil {
			return false, errors.Wrapf(err, "bad characteristics %q", args[1])
		}
		fmt.Fprintln(w, strings.Join(coff.FlagNames(uint32(c)), " "))
	case "help", "?":
		fmt.Fprint(w, inspectHelp)
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, errors.Errorf("unknown command %q, try help", args[0])
	}
	return false, nil
}

// Run reads commands until quit or EOF.
func (in *Inspector) Run(prompt string) error {
	configDirs := configdir.New(models.ConfigVendor, "inspect")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt + "> ",
		InterruptPrompt: "\n",
		HistoryFile:     historyPath,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	in.rl = rl
	defer in.Close()

	for {
		ln := rl.Line()
		if ln.Error == readline.ErrInterrupt {
			continue
		} else if ln.CanBreak() {
			break
		}
		quit, err := in.Exec(ln.Line, rl.Stdout())
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
		}
		if quit {
			break
		}
	}
	return nil
}

func (in *Inspector) Close() {
	if in.rl != nil {
		in.rl.Close()
		in.rl = nil
	}
}
