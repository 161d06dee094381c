package logger

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/theme"
)

// StyledLogger wraps slog.Logger with Theme-aware formatting
type StyledLogger struct {
	logger *slog.Logger
	Theme  *theme.Theme
}

func NewStyledLogger(logger *slog.Logger, theme *theme.Theme) *StyledLogger {
	return &StyledLogger{
		logger: logger,
		Theme:  theme,
	}
}

func (sl *StyledLogger) Debug(msg string, args ...any) {
	sl.logger.Debug(msg, args...)
}

func (sl *StyledLogger) Info(msg string, args ...any) {
	sl.logger.Info(msg, args...)
}

func (sl *StyledLogger) Warn(msg string, args ...any) {
	sl.logger.Warn(msg, args...)
}

func (sl *StyledLogger) Error(msg string, args ...any) {
	sl.logger.Error(msg, args...)
}

func (sl *StyledLogger) InfoWithCount(msg string, count int, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Counts.Sprint("(", count, ")"))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) InfoWithStation(msg string, station string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Station.Sprint(station))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) InfoWithTrain(msg string, trainNo string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Train.Sprint(trainNo))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) WarnWithSlot(msg string, slot string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Highlight.Sprint(slot))
	sl.logger.Warn(styledMsg, args...)
}

// InfoSlotState logs a slot transition with the state coloured by severity.
func (sl *StyledLogger) InfoSlotState(msg string, slot string, state domain.SlotState, args ...any) {
	var stateColor pterm.Color

	switch state {
	case domain.SlotActive:
		stateColor = sl.Theme.SlotHealthy
	case domain.SlotCooldown:
		stateColor = sl.Theme.SlotCooldown
	case domain.SlotDisabled:
		stateColor = sl.Theme.SlotDisabled
	}

	styledMsg := fmt.Sprintf("%s %s is %s", msg,
		sl.Theme.Highlight.Sprint(slot),
		pterm.Style{stateColor}.Sprint(string(state)))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) GetUnderlying() *slog.Logger {
	return sl.logger
}

func (sl *StyledLogger) With(args ...any) *StyledLogger {
	return &StyledLogger{
		logger: sl.logger.With(args...),
		Theme:  sl.Theme,
	}
}

func NewWithTheme(cfg *Config) (*slog.Logger, *StyledLogger, func(), error) {
	logger, cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	appTheme := theme.GetTheme(cfg.Theme)
	styledLogger := NewStyledLogger(logger, appTheme)

	return logger, styledLogger, cleanup, nil
}
