package logger

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// profiles maps an environment name to its base zap configuration.
var profiles = map[string]func() zap.Config{
	"prod":   prodConfig,
	"local":  zap.NewDevelopmentConfig,
	"dev":    zap.NewDevelopmentConfig,
	"docker": zap.NewDevelopmentConfig,
	"cli":    cliConfig,
}

// prod emits JSON tagged with the service name.
func prodConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": "srcdex"}
	return cfg
}

// cli writes bare warnings to stderr; stdout belongs to command output.
func cliConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.OutputPaths = []string{"stderr"}
	return cfg
}

// Environments lists the accepted environment names, sorted.
func Environments() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewLogger builds the logger for env (see Environments). A non-empty
// levelOverride (debug, info, warn, error) replaces the profile's level.
func NewLogger(env string, levelOverride ...string) (*zap.Logger, error) {
	profile, ok := profiles[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger (want one of %s)",
			env, strings.Join(Environments(), ", "))
	}
	cfg := profile()

	if len(levelOverride) > 0 && levelOverride[0] != "" {
		level, err := zapcore.ParseLevel(levelOverride[0])
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelOverride[0], err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
