package sections

import (
	"github.com/lunixbochs/pecorn/go/cmd"
	"github.com/lunixbochs/pecorn/go/models"
)

func Main(args []string) int {
	c := cmd.NewDumpCmd("sections")
	c.RunLoader = func(path string, l models.Loader) error {
		p := &models.SectionPrinter{Color: c.Config.Color, Flags: c.Config.Flags, Raw: c.Config.Raw}
		p.Fprint(c.Stdout, l.Sections())
		return nil
	}
	return c.Run(args)
}

func init() { cmd.Register("sections", "print the section table of a PE image or COFF object", Main) }
