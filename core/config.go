package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	Config struct {
		Env       string
		Debug     bool
		TestMode  bool
		AppName   string
		SecretKey []byte
		Build     string
		WorkDir   string

		FrontendBaseURL       string
		DefaultFromEmail      string
		AdmissionsOfficeEmail string
		SendgridAPIKey        string
		RollbarToken          string

		ReferencePrefix   string
		ReferenceCacheTTL time.Duration
		RoleCacheTTL      time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
)

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) DefaultFromAddr() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func (c *Config) AdmissionsOfficeAddr() mail.Address {
	return mail.Address{Name: c.AppName + " Admissions", Address: c.AdmissionsOfficeEmail}
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Udahili")
	v.SetDefault("secretKey", "w3lc0me-t0-qu3llbr00k-1nt3rnat10nal-sch00l!")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("admissionsOfficeEmail", "admissions@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("referencePrefix", "QIS")
	v.SetDefault("referenceCacheTTL", 48*time.Hour)
	v.SetDefault("roleCacheTTL", 5*time.Minute)
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("shutdownTimeout", 20*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "udahili")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", 5432)
	v.SetDefault("databaseDisableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Env:       env,
		Debug:     v.GetBool("debug"),
		TestMode:  testMode,
		AppName:   v.GetString("appName"),
		SecretKey: []byte(v.GetString("secretKey")),
		Build:     v.GetString("build"),
		WorkDir:   wd,

		FrontendBaseURL:       v.GetString("frontendBaseURL"),
		DefaultFromEmail:      v.GetString("defaultFromEmail"),
		AdmissionsOfficeEmail: v.GetString("admissionsOfficeEmail"),
		SendgridAPIKey:        v.GetString("sendgridAPIKey"),
		RollbarToken:          v.GetString("rollbarToken"),

		ReferencePrefix:   v.GetString("referencePrefix"),
		ReferenceCacheTTL: v.GetDuration("referenceCacheTTL"),
		RoleCacheTTL:      v.GetDuration("roleCacheTTL"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetInt("serverPort"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetInt("databasePort"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
	}
}
