package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "PETPASSPORT_"

type Application struct {
	Host     string   `koanf:"host"`
	Listen   string   `koanf:"listen"`
	Database Database `koanf:"db"`
	Calendar Calendar `koanf:"calendar"`
	Reminder Reminder `koanf:"reminder"`
	Share    Share    `koanf:"share"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Calendar struct {
	// OneTimeLookbackDays limits how far in the past one-time events are loaded.
	// Recurring events are always loaded in full.
	OneTimeLookbackDays int `koanf:"onetimelookbackdays"`
	// MaxRangeDays is the longest from/to window accepted by the occurrences endpoint.
	MaxRangeDays int `koanf:"maxrangedays"`
	UpcomingDays int `koanf:"upcomingdays"`
}

type Reminder struct {
	Enabled       bool   `koanf:"enabled"`
	Cron          string `koanf:"cron"`
	LookaheadDays int    `koanf:"lookaheaddays"`
}

type Share struct {
	// DefaultTTLHours is applied to new share links created without an expiry. 0 means never expire.
	DefaultTTLHours int `koanf:"defaultttlhours"`
}

func Defaults() Application {
	return Application{
		Host:   "http://localhost:3000",
		Listen: ":8181",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "petpassport",
			Pass:   "",
			Name:   "petpassport",
			Schema: "petpassport",
		},
		Calendar: Calendar{
			OneTimeLookbackDays: 365,
			MaxRangeDays:        400,
			UpcomingDays:        30,
		},
		Reminder: Reminder{
			Enabled:       false,
			Cron:          "0 7 * * *",
			LookaheadDays: 1,
		},
	}
}

func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
