// Package logger configures the process-wide structured logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus logger tagged with the service name. The level
// is taken from LOG_LEVEL and defaults to info.
func New(serviceName string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.AddHook(&serviceHook{name: serviceName})
	return log
}

type serviceHook struct{ name string }

func (h *serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serviceHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = h.name
	return nil
}
