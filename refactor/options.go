package refactor

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/go-mdr/mdr/errormetric"
	"github.com/go-mdr/mdr/lossless"
)

// Options configures one Refactor call.
type Options struct {
	TargetLevel uint8
	NumPlanes   uint8
	Negabinary  bool
	Estimator   errormetric.Estimator
	Lossless    lossless.Backend
	// Logger receives one Debug line per level and one Info line at
	// completion. A nil Logger discards all output.
	Logger *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
