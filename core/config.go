package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application configuration singleton. It is set by NewConfig;
// packages that cannot take a *Config (template helpers) read it directly.
var Conf *Config

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		WorkDir  string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		defaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server    ServerConfig
		Simulator SimulatorConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	// SimulatorConfig drives the background timers (notification injection,
	// presence flicker, expiry sweeps). All knobs are injectable so tests can
	// force deterministic ticks instead of relying on wall-clock randomness.
	SimulatorConfig struct {
		NotificationPeriod      time.Duration
		NotificationProbability float64
		SweepPeriod             time.Duration
		PresencePeriod          time.Duration
		PresenceProbability     float64
		MessageProbability      float64
		TypingExpiry            time.Duration
		ReconnectBaseDelay      time.Duration
		ReconnectMaxAttempts    int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k3y8-wad)onb$+75=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("simNotificationPeriod", 30*time.Second)
	v.SetDefault("simNotificationProbability", 0.1)
	v.SetDefault("simSweepPeriod", 60*time.Second)
	v.SetDefault("simPresencePeriod", 10*time.Second)
	v.SetDefault("simPresenceProbability", 0.3)
	v.SetDefault("simMessageProbability", 0.05)
	v.SetDefault("simTypingExpiry", 3*time.Second)
	v.SetDefault("simReconnectBaseDelay", time.Second)
	v.SetDefault("simReconnectMaxAttempts", 5)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
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

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		WorkDir:          wd,
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseUrl"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Addr:                      v.GetString("serverAddr"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Simulator: SimulatorConfig{
			NotificationPeriod:      v.GetDuration("simNotificationPeriod"),
			NotificationProbability: v.GetFloat64("simNotificationProbability"),
			SweepPeriod:             v.GetDuration("simSweepPeriod"),
			PresencePeriod:          v.GetDuration("simPresencePeriod"),
			PresenceProbability:     v.GetFloat64("simPresenceProbability"),
			MessageProbability:      v.GetFloat64("simMessageProbability"),
			TypingExpiry:            v.GetDuration("simTypingExpiry"),
			ReconnectBaseDelay:      v.GetDuration("simReconnectBaseDelay"),
			ReconnectMaxAttempts:    v.GetInt("simReconnectMaxAttempts"),
		},
	}
	Conf = conf
	return conf
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}
