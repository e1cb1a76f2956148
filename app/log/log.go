package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "yatube"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and packages used without main still get a usable logger.
func init() {
	InitLogger("info", "text", os.Stderr)
}

// InitLogger replaces the global logger. Unknown levels fall back to info.
func InitLogger(level, format string, out io.Writer) {
	logger = logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithFields(logrus.Fields{"service": serviceName})
}
