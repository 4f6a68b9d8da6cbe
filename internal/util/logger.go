package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger writes to stderr; stdout belongs to command output.
func NewZapLogger(levelName string) *zap.SugaredLogger {
	stderr := zapcore.AddSync(os.Stderr)

	lvl, err := zapcore.ParseLevel(levelName)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	level := zap.NewAtomicLevelAt(lvl)

	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(developmentCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, stderr, level),
	)

	return zap.New(core).Sugar()
}
