package log

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   false,
		ForceColors:     true,
	}
}

func Print(c *fiber.Ctx) *logrus.Entry {
	if c == nil {
		return logger.WithFields(logrus.Fields{})
	}

	remoteIP := c.IP()
	if v := c.Locals("remote_ip"); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			remoteIP = ip
		}
	}
	return logger.WithFields(logrus.Fields{
		"remote_ip": remoteIP,
		"method":    c.Method(),
		"uri":       c.OriginalURL(),
	})
}

// SyncOp returns a log entry scoped to one user's sync operation
func SyncOp(userID string, operation string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"component": "sync",
		"user_id":   userID,
		"operation": operation,
	})
}

// GatewayOp returns a log entry scoped to one gateway call
func GatewayOp(userID string, operation string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"component": "gateway",
		"user_id":   userID,
		"operation": operation,
	})
}
