package countdown

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Display redraws a single terminal line in place.
type Display struct {
	out   io.Writer
	blank string
	log   *zerolog.Logger
}

func NewDisplay(out io.Writer, width int, logger *zerolog.Logger) *Display {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Display{
		out:   out,
		blank: "\r" + strings.Repeat(" ", width),
		log:   logger,
	}
}

// Redraw blanks the current line and writes s over it.
func (d *Display) Redraw(s string) {
	d.write(d.blank)
	d.write("\r" + s)
}

// Terminate ends the live line.
func (d *Display) Terminate() {
	d.write("\n")
}

func (d *Display) write(s string) {
	if _, err := io.WriteString(d.out, s); err != nil {
		d.log.Debug().Err(err).Msg("display write failed")
	}
}
