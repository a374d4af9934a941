package logger

import (
	"io"
	"log/slog"
	"os"
)

type Options struct {
	Service   string
	Env       string
	Level     slog.Level
	AddSource bool
	// nil なら stdout
	Out io.Writer
}

// New は JSON の slog.Logger を作り、既定のロガーにも設定する。
func New(opts Options) *slog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	})

	base := slog.New(h).With(
		"service", opts.Service,
		"env", opts.Env,
	)

	slog.SetDefault(base)
	return base
}

// NewText は端末向けのテキストロガー（既定ロガーは変えない）。
func NewText(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
