package logging

import (
	"os"
	"strings"

	"github.com/Domenick1991/tripbooking/config"
	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger and returns it.
func Init(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
