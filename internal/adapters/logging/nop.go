package logging

import "go.uber.org/zap"

// NewNop returns a logger that discards everything.
func NewNop() *ZapLogger {
	return Wrap(zap.NewNop())
}
