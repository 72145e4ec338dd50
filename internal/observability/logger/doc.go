// Package logger provides a singleton Zap logger with context-based scoping.
//
// Initialization (once, in main):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,    // "dev" or "prod"
//	    Level: cfg.App.LogLevel,
//	})
//	defer logger.Sync()
//
// In handlers/services (with context):
//
//	log := logger.From(ctx)
//	log.Info("identity resolved", logger.Email(email))
//
// Without context (fallback to singleton):
//
//	logger.L().Info("server started")
package logger
