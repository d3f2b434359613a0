package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envString(dst *string, names ...string) {
	for _, n := range names {
		if v, ok := lookup(n); ok {
			*dst = v
			return
		}
	}
}

func envInt(dst *int, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func envFloat(dst *float64, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = f
	return nil
}

func envDuration(dst *time.Duration, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func anySet(names ...string) bool {
	for _, n := range names {
		if _, ok := lookup(n); ok {
			return true
		}
	}
	return false
}

// applyEnv overlays environment variables on cfg.
func applyEnv(cfg *Config) error {
	envString(&cfg.Env, "APP_ENV")
	envString(&cfg.Timezone, "LIFESTREAM_TIMEZONE", "TZ")
	envString(&cfg.DatabaseURL, "DATABASE_URL")
	envString(&cfg.SQLitePath, "SQLITE_PATH")

	if port, ok := lookup("PORT"); ok {
		if strings.HasPrefix(port, ":") {
			cfg.Server.Addr = port
		} else {
			cfg.Server.Addr = ":" + port
		}
	}
	envString(&cfg.Server.UserHeader, "LIFESTREAM_USER_HEADER")
	envString(&cfg.Server.DefaultUser, "LIFESTREAM_DEFAULT_USER")

	envString(&cfg.LLM.Backend, "LLM_PROVIDER")
	if err := envDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT"); err != nil {
		return err
	}
	if err := envFloat(&cfg.LLM.RPS, "LLM_RPS"); err != nil {
		return err
	}
	if err := envInt(&cfg.LLM.Burst, "LLM_BURST"); err != nil {
		return err
	}
	if err := envInt(&cfg.LLM.MaxAttempts, "LLM_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := envDuration(&cfg.LLM.RetryBackoff, "LLM_RETRY_BACKOFF"); err != nil {
		return err
	}

	if anySet("LLAMACPP_BASE_URL", "LLAMACPP_MODEL", "LLAMACPP_API_KEY", "LLAMACPP_TEMPERATURE") {
		if cfg.LlamaCpp == nil {
			cfg.LlamaCpp = &LlamaCppConfig{Temperature: defaultTemperature}
		}
		envString(&cfg.LlamaCpp.BaseURL, "LLAMACPP_BASE_URL")
		envString(&cfg.LlamaCpp.Model, "LLAMACPP_MODEL")
		envString(&cfg.LlamaCpp.APIKey, "LLAMACPP_API_KEY")
		if err := envFloat(&cfg.LlamaCpp.Temperature, "LLAMACPP_TEMPERATURE"); err != nil {
			return err
		}
	}
	if anySet("PROVIDER_BASE_URL", "PROVIDER_MODEL_ID", "PROVIDER_API_KEY", "PROVIDER_TEMPERATURE") {
		if cfg.Provider == nil {
			cfg.Provider = &ProviderConfig{}
		}
		envString(&cfg.Provider.BaseURL, "PROVIDER_BASE_URL")
		envString(&cfg.Provider.ModelID, "PROVIDER_MODEL_ID")
		envString(&cfg.Provider.APIKey, "PROVIDER_API_KEY")
		if _, ok := lookup("PROVIDER_TEMPERATURE"); ok {
			var t float64
			if err := envFloat(&t, "PROVIDER_TEMPERATURE"); err != nil {
				return err
			}
			cfg.Provider.Temperature = &t
		}
	}

	if err := envInt(&cfg.Pipeline.DirectThresholdChars, "PIPELINE_DIRECT_THRESHOLD_CHARS"); err != nil {
		return err
	}
	if err := envInt(&cfg.Pipeline.ChunkBudgetChars, "PIPELINE_CHUNK_BUDGET_CHARS"); err != nil {
		return err
	}
	if err := envInt(&cfg.Pipeline.MapConcurrency, "PIPELINE_MAP_CONCURRENCY"); err != nil {
		return err
	}

	applyArchiveEnv(&cfg.Archive)

	if err := envInt(&cfg.Cache.Size, "REPORT_CACHE_SIZE"); err != nil {
		return err
	}
	return envDuration(&cfg.Cache.TTL, "REPORT_CACHE_TTL")
}

// applyArchiveEnv reads ARCHIVE_S3_* and falls back to the MinIO root
// credentials, which is what a local docker compose setup provides.
func applyArchiveEnv(a *ArchiveConfig) {
	envString(&a.Endpoint, "ARCHIVE_S3_ENDPOINT", "ARCHIVE_MINIO_ENDPOINT")
	envString(&a.Region, "ARCHIVE_S3_REGION")
	a.AccessKey = firstNonEmpty(os.Getenv("ARCHIVE_S3_ACCESS_KEY"), a.AccessKey, os.Getenv("MINIO_ROOT_USER"))
	a.SecretKey = firstNonEmpty(os.Getenv("ARCHIVE_S3_SECRET_KEY"), a.SecretKey, os.Getenv("MINIO_ROOT_PASSWORD"))
	a.AccessKey = strings.TrimSpace(a.AccessKey)
	a.SecretKey = strings.TrimSpace(a.SecretKey)
	envString(&a.Bucket, "ARCHIVE_S3_BUCKET")
	if raw, ok := lookup("ARCHIVE_S3_USE_SSL"); ok {
		a.UseSSL = parseBoolDefault(raw, a.UseSSL)
	}
	if raw, ok := lookup("ARCHIVE_ENABLED"); ok {
		a.Enabled = parseBoolDefault(raw, a.Enabled)
	}
}
