// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup 配置全局日志。level 为空时读取 LOG_LEVEL，默认 info
func Setup(w io.Writer, level string) {
	if w == nil {
		w = os.Stderr
	}
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}).With().Timestamp().Logger()
}
