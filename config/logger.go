package config

import "github.com/spf13/viper"

// Logger logger config struct
type Logger struct {
	Level      string
	Format     string
	Output     string
	OutputFile string
	// Desensitize masks sensitive fields such as passwords and tokens.
	Desensitize     bool
	SensitiveFields []string
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:       getStringOrDefault(v, "logger.level", "info"),
		Format:      getStringOrDefault(v, "logger.format", "json"),
		Output:      getStringOrDefault(v, "logger.output", "stdout"),
		OutputFile:  v.GetString("logger.output_file"),
		Desensitize: getBoolOrDefault(v, "logger.desensitize", true),
		SensitiveFields: getStringSliceOrDefault(v, "logger.sensitive_fields",
			[]string{"password", "token", "access_token", "refresh_token", "otp", "secret"}),
	}
}
