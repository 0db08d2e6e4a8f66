package config

import (
	"io"
	"log/slog"
)

// NewLogger は本番モードではJSON、それ以外ではテキスト形式のロガーを生成します。
func NewLogger(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
