package logger

import (
	"log/slog"
	"os"
)

// Fatal logs through the default slog handler and exits. Only for bootstrap
// failures before the app logger exists; anything later maps to a typed exit
// code instead.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
