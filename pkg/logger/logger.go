package logger

import (
	"log"
	"os"
)

var (
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
)

// Init sets up the console loggers. Called once from main; the helpers
// below lazily initialize so tests can log without ceremony.
func Init() {
	infoLog = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime)
	errorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
}

func Infof(format string, v ...interface{}) {
	if infoLog == nil {
		Init()
	}
	infoLog.Printf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	if warnLog == nil {
		Init()
	}
	warnLog.Printf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	if errorLog == nil {
		Init()
	}
	errorLog.Printf(format, v...)
}
