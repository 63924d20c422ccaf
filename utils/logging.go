package utils

import (
	"os"

	logger "github.com/sirupsen/logrus"
)

// InitLogger applies the logging section of the configuration to the standard logger
func InitLogger() {
	if Config.Logging.OutputStderr {
		logger.SetOutput(os.Stderr)
	}
	if Config.Logging.OutputLevel != "" {
		logLevel, err := logger.ParseLevel(Config.Logging.OutputLevel)
		if err != nil {
			logger.WithField("level", Config.Logging.OutputLevel).Warn("invalid log level, defaulting to info")
			logLevel = logger.InfoLevel
		}
		logger.SetLevel(logLevel)
	}
}

// LogError logs an error with an error message and arbitrarily many additional infos.
func LogError(err error, errorMsg interface{}, additionalInfos ...map[string]interface{}) {
	logFields := logger.NewEntry(logger.StandardLogger())
	if err != nil {
		logFields = logFields.WithError(err)
	}
	for _, infoMap := range additionalInfos {
		for name, info := range infoMap {
			logFields = logFields.WithField(name, info)
		}
	}
	logFields.Error(errorMsg)
}

// LogFatal logs a fatal error with an error message and arbitrarily many additional infos.
func LogFatal(err error, errorMsg interface{}, additionalInfos ...map[string]interface{}) {
	logFields := logger.NewEntry(logger.StandardLogger())
	if err != nil {
		logFields = logFields.WithError(err)
	}
	for _, infoMap := range additionalInfos {
		for name, info := range infoMap {
			logFields = logFields.WithField(name, info)
		}
	}
	logFields.Fatal(errorMsg)
}
