package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/lunixbochs/pecorn/go/loader"
	"github.com/lunixbochs/pecorn/go/models"
)

type DumpCmd struct {
	App    string
	Config *models.Config

	SetupFlags func() error
	RunLoader  func(path string, l models.Loader) error

	Loader models.Loader
	Flags  *flag.FlagSet
	Stdout io.Writer
	Stderr io.Writer
}

func NewDumpCmd(app string) *DumpCmd {
	fs := flag.NewFlagSet(app, flag.ContinueOnError)
	return &DumpCmd{
		App:    app,
		Flags:  fs,
		Stdout: colorable.NewColorableStdout(),
		Stderr: os.Stderr,
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// deepest returns the innermost error in the chain that carries a stack trace.
func deepest(err error) stackTracer {
	var st stackTracer
	for err != nil {
		if s, ok := err.(stackTracer); ok {
			st = s
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = cause.Cause()
	}
	return st
}

func (c *DumpCmd) PrintError(err error) {
	w := c.Stderr
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w, "Error: %s\n", err)
	if c.Config == nil || !c.Config.Verbose {
		return
	}
	st := deepest(err)
	if st == nil {
		return
	}
	// parse full path and method name for each stack frame
	var frames [][]string
	for _, f := range st.StackTrace() {
		fullpath := ""
		fileline := fmt.Sprintf("%s:%d", f, f)
		method := fmt.Sprintf("%n", f)

		tmp := strings.SplitN(fmt.Sprintf("%+s", f), "\n", 3)
		if len(tmp) == 2 {
			pathsplit := strings.Split(tmp[0], "/")
			method = pathsplit[len(pathsplit)-1]
			fullpath = strings.TrimSpace(tmp[1])
		}
		frames = append(frames, []string{fullpath, fileline, method})
		if method == "main.main" {
			break
		}
	}
	widths := make([]int, 3)
	for _, f := range frames {
		for i, s := range f {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}
	for _, f := range frames {
		for i := 0; i < 2; i++ {
			if widths[i] > 0 {
				fmt.Fprintf(w, "%-*s | ", widths[i], f[i])
			}
		}
		fmt.Fprintf(w, "%s()\n", f[2])
	}
}

func (c *DumpCmd) usage() {
	fmt.Fprintf(c.Stderr, "Usage: %s [options] <file>\n\nOptions:\n", c.App)
	var flags []*flag.Flag
	c.Flags.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
	models.PrintFlags(c.Stderr, flags)
}

// Run parses argv, loads the named file and hands it to RunLoader.
// It returns the process exit status.
func (c *DumpCmd) Run(argv []string) int {
	config, err := models.LoadConfig(c.App)
	if err != nil {
		fmt.Fprintf(c.Stderr, "warning: %v\n", err)
	}
	c.Config = config
	if !config.Color {
		config.Color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	fs := c.Flags
	fs.SetOutput(c.Stderr)
	fs.Usage = c.usage
	fs.BoolVar(&config.Color, "color", config.Color, "colorize output (default: on when stdout is a terminal)")
	fs.BoolVar(&config.Flags, "flags", config.Flags, "list section characteristics by name")
	fs.BoolVar(&config.Raw, "raw", config.Raw, "show the on-disk name field of string table names")
	fs.BoolVar(&config.Verbose, "v", config.Verbose, "verbose output, including error stack traces")
	outfile := fs.String("o", "", "write diagnostics to file (default stderr)")
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			c.PrintError(err)
			return 1
		}
	}
	if err := fs.Parse(argv[1:]); err != nil {
		return 2
	}
	if *outfile != "" {
		out, err := os.OpenFile(*outfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			c.PrintError(errors.WithStack(err))
			return 1
		}
		defer out.Close()
		config.Output = out
	}

	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		return 1
	}
	l, err := loader.LoadFile(args[0])
	if err != nil {
		c.PrintError(errors.Wrapf(err, "failed to load %s", args[0]))
		return 1
	}
	c.Loader = l
	config.Printf("%s: arch=%s bits=%d sections=%d strtab=%#x\n", args[0], l.Arch(), l.Bits(), len(l.Sections()), l.StringTable())
	if c.RunLoader != nil {
		if err := c.RunLoader(args[0], l); err != nil {
			c.PrintError(err)
			return 1
		}
	}
	return 0
}
