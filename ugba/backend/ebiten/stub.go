//go:build !ebiten

package ebiten

import (
	"errors"

	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/video"
)

// ErrUnavailable is returned by the stub backend.
var ErrUnavailable = errors.New("ebiten backend not available, build with -tags ebiten to enable")

// Backend stub for when ebiten is not compiled in
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	return ErrUnavailable
}

func (b *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	return nil, ErrUnavailable
}

func (b *Backend) Cleanup() error {
	return nil
}

func (b *Backend) Run() error {
	return ErrUnavailable
}
