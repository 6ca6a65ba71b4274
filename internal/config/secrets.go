package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging the active
// configuration.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.Binance.APIKey)
	redact(&out.Binance.APISecret)
	redact(&out.Binance.SecretPassword)

	redact(&out.Supabase.DSN)
	redact(&out.Supabase.Password)

	redact(&out.Redis.Password)

	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	redact(&out.Server.APIKey)

	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	out.Trade.Strategies = cloneStrings(cfg.Trade.Strategies)
	out.Server.CORSOrigins = cloneStrings(cfg.Server.CORSOrigins)
	out.Notify.Events = cloneStrings(cfg.Notify.Events)

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
