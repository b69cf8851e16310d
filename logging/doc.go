// Package logging builds the log/slog loggers used by the configuration
// loader. The logger settings are themselves a configuration schema, so they
// can be read from the environment before anything else is loaded:
//
//	cfg, err := logging.FromEnv(env.OS{}, "MY_APP_")   // MY_APP_LOG_LEVEL, MY_APP_LOG_FORMAT
//	logger := logging.NewLogger(cfg, os.Stderr)
package logging
