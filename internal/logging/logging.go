// Package logging configures logrus for the relay process. Everything,
// including Gin's own output, flows through one logrus instance so the
// destination can be switched between stdout and a rotating file.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDir      = "logs"
	logFileName = "relay.log"
)

var (
	initOnce sync.Once

	outputMu   sync.Mutex
	fileWriter *lumberjack.Logger
)

// lineFormatter renders each entry as a single line carrying the
// timestamp, level, and caller location.
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *log.Entry) ([]byte, error) {
	buf := entry.Buffer
	if buf == nil {
		buf = &bytes.Buffer{}
	}

	caller := "-"
	if entry.Caller != nil {
		caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	fmt.Fprintf(buf, "[%s] [%s] [%s] %s\n",
		entry.Time.Format("2006-01-02 15:04:05"),
		strings.ToUpper(entry.Level.String()),
		caller,
		strings.TrimRight(entry.Message, "\r\n"))

	return buf.Bytes(), nil
}

// Init installs the formatter and routes Gin's default writers through
// logrus. Safe to call more than once; only the first call takes effect.
func Init() {
	initOnce.Do(func() {
		log.SetOutput(os.Stdout)
		log.SetReportCaller(true)
		log.SetFormatter(&lineFormatter{})

		gin.DefaultWriter = log.StandardLogger().Writer()
		gin.DefaultErrorWriter = log.StandardLogger().WriterLevel(log.ErrorLevel)
		gin.DebugPrintFunc = func(format string, values ...interface{}) {
			log.StandardLogger().Infof(strings.TrimRight(format, "\r\n"), values...)
		}

		log.RegisterExitHandler(closeFileWriter)
	})
}

// ConfigureOutput points the logger at a rotating file under logs/ when
// toFile is true, or back at stdout otherwise.
func ConfigureOutput(toFile bool) error {
	Init()

	outputMu.Lock()
	defer outputMu.Unlock()

	if !toFile {
		if fileWriter != nil {
			_ = fileWriter.Close()
			fileWriter = nil
		}
		log.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("logging: failed to create log directory: %w", err)
	}
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = &lumberjack.Logger{
		Filename: filepath.Join(logDir, logFileName),
		MaxSize:  10,
	}
	log.SetOutput(fileWriter)
	return nil
}

func closeFileWriter() {
	outputMu.Lock()
	defer outputMu.Unlock()

	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
}
