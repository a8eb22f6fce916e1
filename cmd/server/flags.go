package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Host           string
	Port           int
	ConfigFile     string
	LogLevel       string
	LogFormat      string
	StorageBackend string
	PostgresDSN    string
	RedisAddr      string
	EnableCORS     bool
	Version        bool
}

// ParseFlags resolves configuration from defaults, an optional config file,
// DATAPROBE_* environment variables, and command-line flags, in that order of
// increasing precedence.
func ParseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Host, "host", "", "Server host")
	flag.IntVar(&config.Port, "port", 0, "Server port")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file")
	flag.StringVar(&config.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&config.LogFormat, "log-format", "", "Log format (json, text)")
	flag.StringVar(&config.StorageBackend, "storage", "", "Storage backend (memory, postgres, redis)")
	flag.StringVar(&config.PostgresDSN, "postgres-dsn", "", "PostgreSQL connection string")
	flag.StringVar(&config.RedisAddr, "redis-addr", "", "Redis address")
	flag.BoolVar(&config.EnableCORS, "enable-cors", true, "Enable CORS headers")
	flag.BoolVar(&config.Version, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nData Quality Validation Server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if config.Version {
		info := GetBuildInfo()
		fmt.Printf("Version: %s\n", info.Version)
		fmt.Printf("Git Commit: %s\n", info.GitCommit)
		fmt.Printf("Build Date: %s\n", info.BuildDate)
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("Platform: %s\n", info.Platform)
		os.Exit(0)
	}

	v := viper.New()
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("storage", "memory")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("redis_addr", "localhost:6379")

	v.SetEnvPrefix("DATAPROBE")
	v.AutomaticEnv()

	if config.ConfigFile != "" {
		v.SetConfigFile(config.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read config file: %v\n", err)
			os.Exit(1)
		}
	}

	if config.Host == "" {
		config.Host = v.GetString("host")
	}
	if config.Port == 0 {
		config.Port = v.GetInt("port")
	}
	if config.LogLevel == "" {
		config.LogLevel = v.GetString("log_level")
	}
	if config.LogFormat == "" {
		config.LogFormat = v.GetString("log_format")
	}
	if config.StorageBackend == "" {
		config.StorageBackend = v.GetString("storage")
	}
	if config.PostgresDSN == "" {
		config.PostgresDSN = v.GetString("postgres_dsn")
	}
	if config.RedisAddr == "" {
		config.RedisAddr = v.GetString("redis_addr")
	}

	return config
}
