package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 30
)

var logger = log.New(newWriter(), "", log.Ldate|log.Ltime|log.Lmicroseconds)

// newWriter picks the log sink. LOGFILE=- sends everything to stderr.
func newWriter() io.Writer {
	if os.Getenv("LOGFILE") == "-" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename: getLogFilename(),
		MaxSize:  getMaxSize(), // megabytes
		MaxAge:   getMaxAge(),  // days
	}
}

func getLogFilename() string {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		return "./logs/" + logFile
	}
	return "./logs/multisig.log"
}

func getMaxSize() int {
	return intFromEnv("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB)
}

func getMaxAge() int {
	return intFromEnv("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays)
}

func intFromEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("invalid value for %s (%q), using %d", name, raw, fallback)
		return fallback
	}
	return v
}

// SetOutput redirects the logger, mainly for tests and the CLI.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// join separates every operand with a space, strings included.
func join(content []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(content...), "\n")
}

func Info(category string, content ...interface{}) {
	message := join(content)
	coloredCategory := fmt.Sprintf("%s[INFO][%s]%s", ColorGreen, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Error(category string, content ...interface{}) {
	message := join(content)
	coloredCategory := fmt.Sprintf("%s[ERROR][%s]%s", ColorRed, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Warn(category string, content ...interface{}) {
	message := join(content)
	coloredCategory := fmt.Sprintf("%s[WARN][%s]%s", ColorYellow, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

func Debug(category string, content ...interface{}) {
	message := join(content)
	coloredCategory := fmt.Sprintf("%s[DEBUG][%s]%s", ColorBlue, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
