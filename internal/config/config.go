// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// JWTSecret is the symmetric key used to sign access tokens.
	// There is no default: the server refuses to start without one.
	JWTSecret string

	// TokenTTLMinutes is the access token lifetime in minutes.
	TokenTTLMinutes int

	// UploadDir is the root directory for stored leaf images.
	UploadDir string

	// ModelURL is the base URL of the external classifier service.
	ModelURL string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:5000", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "s", "", "token signing key")
	flag.IntVar(&options.TokenTTLMinutes, "ttl", 30, "access token lifetime in minutes")
	flag.StringVar(&options.UploadDir, "u", "uploads/images", "root directory for uploaded images")
	flag.StringVar(&options.ModelURL, "m", "http://localhost:8000", "base URL of the classifier service")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Address = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}
	if ttl := os.Getenv("TOKEN_TTL_MINUTES"); ttl != "" {
		if minutes, err := strconv.Atoi(ttl); err == nil && minutes > 0 {
			options.TokenTTLMinutes = minutes
		}
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		options.UploadDir = uploadDir
	}
	if modelURL := os.Getenv("MODEL_URL"); modelURL != "" {
		options.ModelURL = modelURL
	}

	return options
}
