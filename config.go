package main

import (
	"strconv"
	"time"

	"github.com/horgh/config"
	"github.com/pkg/errors"
)

// Config holds a server's configuration.
type Config struct {
	ListenHost  string
	ListenPort  string
	ServerName  string
	ServerInfo  string
	Version     string
	CreatedDate string
	MOTD        string

	MaxNickLength int

	// Period of time to wait before waking server up (maximum) to run the
	// idle/ping sweep.
	WakeupTime time.Duration

	// Period of time a client can be idle before we send it a PING.
	PingTime time.Duration

	// Period of time a client can be idle before we consider it dead.
	DeadTime time.Duration

	// Oper name to password, for the OPER command (§12 of the spec).
	Opers map[string]string
}

// checkAndParseConfig reads file and populates s.Config (and s.Config.Opers)
// from it, failing startup if any required key is missing, blank, or
// malformed.
func (s *Server) checkAndParseConfig(file string) error {
	configMap, err := config.ReadStringMap(file)
	if err != nil {
		return err
	}

	requiredKeys := []string{
		"listen-host",
		"listen-port",
		"server-name",
		"server-info",
		"version",
		"created-date",
		"motd",
		"max-nick-length",
		"wakeup-time",
		"ping-time",
		"dead-time",
		"opers-config",
	}

	for _, key := range requiredKeys {
		v, exists := configMap[key]
		if !exists {
			return errors.Errorf("missing required key: %s", key)
		}
		if len(v) == 0 {
			return errors.Errorf("configuration value is blank: %s", key)
		}
	}

	s.Config.ListenHost = configMap["listen-host"]
	s.Config.ListenPort = configMap["listen-port"]
	s.Config.ServerName = configMap["server-name"]
	s.Config.ServerInfo = configMap["server-info"]
	s.Config.Version = configMap["version"]
	s.Config.CreatedDate = configMap["created-date"]
	s.Config.MOTD = configMap["motd"]

	nickLen64, err := strconv.ParseInt(configMap["max-nick-length"], 10, 8)
	if err != nil {
		return errors.Wrap(err, "max nick length is not valid")
	}
	s.Config.MaxNickLength = int(nickLen64)

	s.Config.WakeupTime, err = time.ParseDuration(configMap["wakeup-time"])
	if err != nil {
		return errors.Wrap(err, "wakeup time is in invalid format")
	}

	s.Config.PingTime, err = time.ParseDuration(configMap["ping-time"])
	if err != nil {
		return errors.Wrap(err, "ping time is in invalid format")
	}

	s.Config.DeadTime, err = time.ParseDuration(configMap["dead-time"])
	if err != nil {
		return errors.Wrap(err, "dead time is in invalid format")
	}

	opers, err := config.ReadStringMap(configMap["opers-config"])
	if err != nil {
		return errors.Wrap(err, "unable to load opers config")
	}
	s.Config.Opers = opers

	return nil
}
