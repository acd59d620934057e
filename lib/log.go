package lib

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogDirectory = "logs"
	LogFileName  = "log"
)

/*
	This file implements a leveled, colored logger. Output goes to stdout and to an auto-rotating
	log file in the data directory unless an explicit writer is configured.
*/

// LoggerI defines the interface for various logging levels and formatted output
type LoggerI interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
	Print(msg string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Printf(format string, args ...interface{})
}

const (
	DebugLevel int32 = -4
	InfoLevel  int32 = 0
	WarnLevel  int32 = 4
	ErrorLevel int32 = 8
)

var _ LoggerI = &Logger{}

// level pairs a threshold with its label and color
type level struct {
	threshold int32
	label     string
	paint     func(format string, a ...interface{}) string
}

var (
	dbg   = level{DebugLevel, "DEBUG", color.BlueString}
	info  = level{InfoLevel, "INFO", color.GreenString}
	warn  = level{WarnLevel, "WARN", color.YellowString}
	erro  = level{ErrorLevel, "ERROR", color.RedString}
	fatal = level{ErrorLevel, "FATAL", color.RedString}
)

// LoggerConfig holds configuration settings for the logger, including logging level and output writer
type LoggerConfig struct {
	Level int32 `json:"level"`
	Out   io.Writer
}

// Logger is the concrete implementation of LoggerI
type Logger struct {
	config LoggerConfig
}

func (l *Logger) Debug(msg string) { l.log(dbg, msg) }
func (l *Logger) Info(msg string)  { l.log(info, msg) }
func (l *Logger) Warn(msg string)  { l.log(warn, msg) }
func (l *Logger) Error(msg string) { l.log(erro, msg) }
func (l *Logger) Print(msg string) { l.write(msg) }

// Fatal() logs an error message and terminates the program
func (l *Logger) Fatal(msg string) {
	l.log(fatal, msg)
	os.Exit(1)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(dbg, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(info, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(warn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(erro, fmt.Sprintf(format, args...)) }
func (l *Logger) Printf(format string, args ...interface{}) { l.write(fmt.Sprintf(format, args...)) }

// Fatalf() logs a formatted error message and terminates the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(fatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// log() writes the message if the configured level allows it
func (l *Logger) log(lvl level, msg string) {
	if l.config.Level > lvl.threshold {
		return
	}
	l.write(paintLines(lvl.paint, lvl.label+": "+msg))
}

// write() outputs the log message with a timestamp to the configured writer
func (l *Logger) write(msg string) {
	timestamp := color.HiBlackString(time.Now().Format(time.StampMilli))
	if _, err := fmt.Fprintf(l.config.Out, "%s %s\n", timestamp, msg); err != nil {
		fmt.Println(newLogError(err))
	}
}

// NewLogger() creates a new Logger; without an explicit writer it logs to stdout and a rotating file in the data directory
func NewLogger(config LoggerConfig, dataDirPath ...string) LoggerI {
	if config.Out == nil {
		dir := DefaultDataDirPath()
		if len(dataDirPath) != 0 && dataDirPath[0] != "" {
			dir = dataDirPath[0]
		}
		logPath := filepath.Join(dir, LogDirectory, LogFileName)
		if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(filepath.Join(dir, LogDirectory), os.ModePerm); err != nil {
				panic(err)
			}
		}
		config.Out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    1, // megabyte
			MaxBackups: 1500,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	return &Logger{config: config}
}

// NewDefaultLogger() creates a Logger logging at the Debug level to stdout
func NewDefaultLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: os.Stdout})
}

// NewNullLogger() creates a Logger that discards all log output
func NewNullLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: io.Discard})
}

// paintLines() colors each line separately so multi-line errors stay readable
func paintLines(paint func(format string, a ...interface{}) string, msg string) string {
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = paint("%s", line)
	}
	return strings.Join(lines, "\n")
}
