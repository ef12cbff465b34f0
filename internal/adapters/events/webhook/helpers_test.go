package webhook_test

import "log/slog"

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
