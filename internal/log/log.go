package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "action",
		},
	})
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger exposes the process-wide logger.
func Logger() *logrus.Logger { return logger }

// SetOutput swaps the sink and returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	prev := logger.Out
	logger.SetOutput(w)
	return prev
}

// Configure applies the level and, when file is set, tees output into it.
// The returned closer releases the file; it is a no-op without one.
func Configure(level, file string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	logger.SetLevel(lvl)
	if file == "" {
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("log: open %s: %w", file, err)
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}

func entry(kind string, c *fiber.Ctx, err error, fields map[string]any) *logrus.Entry {
	e := logrus.NewEntry(logger).WithField("kind", kind)
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
	}
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry("info", c, nil, fields).Info(action)
}

// Audit records a state change worth keeping.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry("audit", c, nil, fields).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry("security", c, nil, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry("error", c, err, fields).Error(action)
}

// Access logs one served request.
func Access(c *fiber.Ctx, latency time.Duration) {
	entry("access", c, nil, nil).WithField("latency_ms", latency.Milliseconds()).Info("http.access")
}
