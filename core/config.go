package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string
		WorkDir  string

		SecretKey                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration

		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
)

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Kijani")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "x0q5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("serverHost", "0.0.0.0")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("serverDebugHost", "0.0.0.0:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)

	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", 5432)
	conf.SetDefault("databaseName", "kijani")
	conf.SetDefault("databaseUser", "kijani")
	conf.SetDefault("databaseDisableTls", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: env == "TEST",
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),
		WorkDir:  wd,

		SecretKey:                 conf.GetString("secretKey"),
		JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),

		FrontendBaseURL:  conf.GetString("frontendBaseUrl"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			Port:            conf.GetInt("serverPort"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetInt("databasePort"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			DisableTLS:    conf.GetBool("databaseDisableTls"),
		},
	}
}
