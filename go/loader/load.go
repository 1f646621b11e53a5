package loader

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/lunixbochs/pecorn/go/models"
)

var UnknownMagic = errors.New("Could not identify file magic.")

// LoadFile maps path read-only and parses it. Nothing returned references the mapping.
func LoadFile(path string) (models.Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map %s", path)
	}
	defer m.Unmap()
	return Load(m)
}

func Load(p []byte) (models.Loader, error) {
	if MatchPE(p) || MatchCOFF(p) {
		l, err := NewPELoader(p)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, errors.WithStack(UnknownMagic)
}
