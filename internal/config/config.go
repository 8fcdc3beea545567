package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration accepts the "1h30m" notation in yaml.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type AuthConfig struct {
	JWTSecret            string   `yaml:"jwt_secret"`
	TokenTTL             Duration `yaml:"token_ttl"`
	RequireVerifiedLogin bool     `yaml:"require_verified_login"`
}

type OTPConfig struct {
	Length         int      `yaml:"length"`
	TTL            Duration `yaml:"ttl"`
	ResendCooldown Duration `yaml:"resend_cooldown"`
	MaxResends     int      `yaml:"max_resends"`
}

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	StaffChatID int64  `yaml:"staff_chat_id"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth  AuthConfig `yaml:"auth"`
	OTP   OTPConfig  `yaml:"otp"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Files    FilesConfig    `yaml:"files"`
	Telegram TelegramConfig `yaml:"telegram"`
}

func LoadConfig() *Config {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

// Secrets never live in the yaml file in production; env wins when set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Auth.TokenTTL.Duration <= 0 {
		cfg.Auth.TokenTTL.Duration = time.Hour
	}
	if cfg.OTP.Length <= 0 {
		cfg.OTP.Length = 6
	}
	if cfg.OTP.TTL.Duration <= 0 {
		cfg.OTP.TTL.Duration = 30 * time.Minute
	}
	if cfg.OTP.ResendCooldown.Duration <= 0 {
		cfg.OTP.ResendCooldown.Duration = 60 * time.Second
	}
	if cfg.OTP.MaxResends <= 0 {
		cfg.OTP.MaxResends = 3
	}
	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./uploads"
	}
}
