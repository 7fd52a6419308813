package ecsvault

import "go.uber.org/zap"

// logger is the package-wide structured logger. It defaults to a no-op
// so importers don't get unsolicited log output; call SetLogger to
// wire it up (e.g. to a *zap.Logger built with zap.NewProduction()).
var logger = zap.NewNop().Sugar()

// SetLogger replaces the package-wide logger used by the ThreadPool and
// Manager. The console package keeps its own logger, set through
// console.SetLogger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.Sugar()
}
