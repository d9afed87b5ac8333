package cmd

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cchalm/sorabot/internal/config"
)

var (
	cfg    = config.Default()
	logger = zerolog.Nop()
)

// flags holds values of persistent flags that override the environment
var flags struct {
	model    string
	timeout  time.Duration
	logLevel string
}
