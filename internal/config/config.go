package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/glabrego/snoo-cli/internal/feed"
)

const (
	defaultAPIBaseURL      = "https://www.reddit.com"
	defaultOAuthAPIBaseURL = "https://oauth.reddit.com"
	defaultUserAgent       = "snoo-cli/0.1"
	maxChunkSize           = 100
)

// Config holds runtime settings for the CLI app.
type Config struct {
	APIBaseURL       string
	UserAgent        string
	AccessToken      string
	DBPath           string
	Feed             string
	Sort             string
	ChunkSize        int
	HideRead         bool
	MarkReadOnScroll bool
	LogLevel         string
	LogPath          string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL:  os.Getenv("SNOO_API_BASE_URL"),
		UserAgent:   os.Getenv("SNOO_USER_AGENT"),
		AccessToken: strings.TrimSpace(os.Getenv("SNOO_ACCESS_TOKEN")),
		DBPath:      os.Getenv("SNOO_DB_PATH"),
		Feed:        strings.Trim(strings.TrimSpace(os.Getenv("SNOO_FEED")), "/"),
		Sort:        os.Getenv("SNOO_SORT"),
		LogLevel:    os.Getenv("SNOO_LOG_LEVEL"),
		LogPath:     os.Getenv("SNOO_LOG_PATH"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
		if cfg.AccessToken != "" {
			cfg.APIBaseURL = defaultOAuthAPIBaseURL
		}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "snoo.db"
	}
	if cfg.Sort == "" {
		cfg.Sort = string(feed.SortHot)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	var err error
	if cfg.ChunkSize, err = intEnv("SNOO_CHUNK_SIZE", feed.DefaultChunkSize); err != nil {
		return Config{}, err
	}
	if cfg.ChunkSize > maxChunkSize {
		cfg.ChunkSize = maxChunkSize
	}
	if cfg.HideRead, err = boolEnv("SNOO_HIDE_READ", false); err != nil {
		return Config{}, err
	}
	if cfg.MarkReadOnScroll, err = boolEnv("SNOO_MARK_READ_ON_SCROLL", true); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.APIBaseURL[len(c.APIBaseURL)-1] == '/' {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("APIBaseURL must be an http(s) URL: %s", c.APIBaseURL)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return errors.New("UserAgent is required")
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if _, ok := feed.ParseSort(c.Sort); !ok {
		return fmt.Errorf("Sort must be one of hot, new, top, rising, controversial: %s", c.Sort)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("ChunkSize must be positive: %d", c.ChunkSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LogLevel must be debug, info, warn or error: %s", c.LogLevel)
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, raw)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %q", key, raw)
	}
	return v, nil
}
