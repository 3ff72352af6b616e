// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"

	"github.com/contesthub/contesthub/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup applies the log configuration: level, formatter and, when a file is
// configured, size-based rotation.
func Setup(cfg config.LogConfig) error {
	level, errParse := log.ParseLevel(cfg.Level)
	if errParse != nil {
		return fmt.Errorf("logging: parse level %q: %w", cfg.Level, errParse)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}
	return nil
}
