package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                  int
	DatabaseURL           string
	DatabaseType          string
	AdminKeySalt          string
	ElectionName          string
	VoterIDLength         int
	DeadlineCheckInterval time.Duration
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Election settings
	fs.StringVar(&cfg.ElectionName, "election", "", "Election name (admin key scope)")
	fs.IntVar(&cfg.VoterIDLength, "id-length", 0, "Number of digits in a voter ID")
	fs.DurationVar(&cfg.DeadlineCheckInterval, "deadline-check", 0, "How often to check the voting deadline")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.ElectionName == "" {
		cfg.ElectionName = os.Getenv("ELECTION_NAME")
		if cfg.ElectionName == "" {
			cfg.ElectionName = "general"
		}
	}

	if cfg.VoterIDLength == 0 {
		if s := os.Getenv("VOTER_ID_LENGTH"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid VOTER_ID_LENGTH env variable")
			}
			cfg.VoterIDLength = n
		} else {
			cfg.VoterIDLength = 16
		}
	}
	if cfg.VoterIDLength <= 0 {
		return Config{}, errors.New("voter ID length must be positive")
	}

	if cfg.DeadlineCheckInterval == 0 {
		if s := os.Getenv("DEADLINE_CHECK_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid DEADLINE_CHECK_INTERVAL env variable")
			}
			cfg.DeadlineCheckInterval = d
		} else {
			cfg.DeadlineCheckInterval = 5 * time.Second
		}
	}
	if cfg.DeadlineCheckInterval <= 0 {
		return Config{}, errors.New("deadline check interval must be positive")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	return cfg, nil
}
