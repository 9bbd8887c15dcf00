// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks personal and financial data in production
// ============================================================================

package utils

import (
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction turns masking on.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	baseLogger = zap.NewNop()
)

// InitLogger builds the process logger. level is one of debug, info, warn, error.
func InitLogger(development bool, level string) error {
	var config zap.Config
	if development {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	switch strings.ToLower(level) {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn", "warning":
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}
	baseLogger = logger
	return nil
}

// Logger returns the process logger. It is a no-op logger until InitLogger runs.
func Logger() *zap.Logger {
	return baseLogger
}

// SetLogger replaces the process logger; tests use zaptest or zap.NewNop.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	baseLogger = l
}

func SyncLogger() {
	_ = baseLogger.Sync()
}

// ============================================================================
// MASKING
// ============================================================================

var (
	emailRegex              = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	amountWithCurrencyRegex = regexp.MustCompile(`\$\s*\d+([.,]\d{1,2})?`)
	uuidRegex               = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString hides emails, dollar amounts and shortens UUIDs.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := emailRegex.ReplaceAllLiteralString(input, "***@***.***")
	result = amountWithCurrencyRegex.ReplaceAllLiteralString(result, "$***")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		return id[:8] + "..."
	})
	return result
}

// MaskAmount hides a money amount.
func MaskAmount(amount string) string {
	if IsProduction {
		return "***"
	}
	return amount
}

// MaskID keeps the first 8 characters of an id.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// DOMAIN LOGGING
// ============================================================================

// LogAuthAction logs an authentication step without exposing the email.
func LogAuthAction(action string, email string, success bool, fields ...zap.Field) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	baseLogger.Info("auth action", append([]zap.Field{
		zap.String("action", action),
		zap.String("email", MaskEmail(email)),
		zap.String("status", status),
	}, fields...)...)
}

// LogBudgetAction logs a budget write without exposing amounts.
func LogBudgetAction(action string, userID string, fields ...zap.Field) {
	baseLogger.Info("budget action", append([]zap.Field{
		zap.String("action", action),
		zap.String("user_id", MaskID(userID)),
	}, fields...)...)
}

// LogAPIRequest logs a served request with ids in the path shortened.
func LogAPIRequest(method, path, userID string, statusCode int, duration string) {
	baseLogger.Info("api request",
		zap.String("method", method),
		zap.String("path", MaskString(path)),
		zap.String("user_id", MaskID(userID)),
		zap.Int("status", statusCode),
		zap.String("duration", duration),
	)
}

func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup logs the startup banner.
func LogStartup(appName, version, port string) {
	baseLogger.Info("starting",
		zap.String("app", appName),
		zap.String("version", version),
		zap.String("mode", GetEnvMode()),
		zap.String("port", port),
		zap.Bool("masking", IsProduction),
	)
}
