package inspect

import (
	"path/filepath"

	"github.com/lunixbochs/pecorn/go/cmd"
	"github.com/lunixbochs/pecorn/go/models"
	"github.com/lunixbochs/pecorn/go/ui"
)

func Main(args []string) int {
	c := cmd.NewDumpCmd("inspect")
	c.RunLoader = func(path string, l models.Loader) error {
		in := ui.NewInspector(l, c.Config)
		return in.Run(filepath.Base(path))
	}
	return c.Run(args)
}

func init() { cmd.Register("inspect", "browse sections interactively", Main) }
