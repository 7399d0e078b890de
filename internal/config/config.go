// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads configuration from an optional config.yaml, a .env
// file and environment variables. It is read once at start-up; no other
// package consults the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultSourceURL = "https://jsonplaceholder.typicode.com/users"

// SourceConfig describes the remote user list.
type SourceConfig struct {
	URL     string
	Timeout time.Duration

	// Optional OAuth2 client-credentials. Auth is enabled when TokenURL
	// and ClientID are both set.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// AuthEnabled reports whether requests to the source need a bearer token.
func (s SourceConfig) AuthEnabled() bool {
	return s.TokenURL != "" && s.ClientID != ""
}

// StoreConfig identifies the MongoDB collection documents are written to.
type StoreConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Config holds all configuration for the ETL service.
type Config struct {
	Source SourceConfig
	Store  StoreConfig

	// PipelineSource is the tag written into every document.
	PipelineSource string

	// Optional run history (Postgres) and run events (Redis).
	DatabaseURL string
	RedisURL    string
	EventsQueue string

	// HTTP server
	Port        int
	UsersLimit  int
	CORSOrigins []string

	LogLevel string
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Mongo struct {
		URI        string `yaml:"uri"`
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"mongo"`
	Source struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
		OAuth   struct {
			TokenURL     string   `yaml:"token_url"`
			ClientID     string   `yaml:"client_id"`
			ClientSecret string   `yaml:"client_secret"`
			Scopes       []string `yaml:"scopes"`
		} `yaml:"oauth"`
	} `yaml:"source"`
	Pipeline struct {
		Tag string `yaml:"tag"`
	} `yaml:"pipeline"`
	Server struct {
		Port        int      `yaml:"port"`
		UsersLimit  int      `yaml:"users_limit"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Events string `yaml:"events"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration. A .env file in the working directory is loaded
// first without overriding variables already set. config.yaml (or
// CONFIG_PATH) is optional unless CONFIG_PATH is given explicitly; ${VAR}
// references in it are expanded before parsing. Environment variables fill
// any value the file leaves empty.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	raw, err := readFile()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := durationValue(raw.Source.Timeout, "SOURCE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	storeTimeout, err := durationValue(raw.Mongo.Timeout, "STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Source: SourceConfig{
			URL:          firstNonEmpty(raw.Source.URL, os.Getenv("SOURCE_URL"), defaultSourceURL),
			Timeout:      sourceTimeout,
			TokenURL:     firstNonEmpty(raw.Source.OAuth.TokenURL, os.Getenv("SOURCE_TOKEN_URL")),
			ClientID:     firstNonEmpty(raw.Source.OAuth.ClientID, os.Getenv("SOURCE_CLIENT_ID")),
			ClientSecret: firstNonEmpty(raw.Source.OAuth.ClientSecret, os.Getenv("SOURCE_CLIENT_SECRET")),
			Scopes:       firstNonEmptyList(raw.Source.OAuth.Scopes, splitList(os.Getenv("SOURCE_SCOPES"))),
		},
		Store: StoreConfig{
			URI:        firstNonEmpty(raw.Mongo.URI, os.Getenv("MONGO_URI")),
			Database:   firstNonEmpty(raw.Mongo.Database, os.Getenv("DB_NAME")),
			Collection: firstNonEmpty(raw.Mongo.Collection, os.Getenv("COLLECTION_NAME")),
			Timeout:    storeTimeout,
		},
		PipelineSource: firstNonEmpty(raw.Pipeline.Tag, os.Getenv("PIPELINE_SOURCE"), "Robyn-ETL"),
		DatabaseURL:    firstNonEmpty(raw.Postgres.URL, os.Getenv("DATABASE_URL")),
		RedisURL:       firstNonEmpty(raw.Redis.URL, os.Getenv("REDIS_URL")),
		EventsQueue:    firstNonEmpty(raw.Redis.Queues.Events, os.Getenv("EVENTS_QUEUE"), "etl:runs"),
		Port:           firstPositive(raw.Server.Port, envOrDefaultInt("PORT", 8080)),
		UsersLimit:     firstPositive(raw.Server.UsersLimit, envOrDefaultInt("USERS_LIMIT", 10)),
		CORSOrigins:    firstNonEmptyList(raw.Server.CORSOrigins, splitList(os.Getenv("CORS_ORIGINS")), []string{"*"}),
		LogLevel:       firstNonEmpty(raw.LogLevel, os.Getenv("LOG_LEVEL"), "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Store.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.Store.Database == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Store.Collection == "" {
		missing = append(missing, "COLLECTION_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// readFile parses the YAML config file, if there is one.
func readFile() (rawConfig, error) {
	var raw rawConfig

	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		path, explicit = "config.yaml", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("read config file %s: %w", path, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return raw, fmt.Errorf("parse config YAML: %w", err)
	}
	return raw, nil
}

func durationValue(fromFile, envKey string, fallback time.Duration) (time.Duration, error) {
	v := firstNonEmpty(fromFile, os.Getenv(envKey))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return d, nil
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmptyList(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
