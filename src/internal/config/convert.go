// FILE: ziplog/src/internal/config/convert.go
package config

import (
	"fmt"

	"github.com/zipscene/ziplog/src/internal/core"
	"github.com/zipscene/ziplog/src/internal/logger"
	"github.com/zipscene/ziplog/src/internal/normalize"
	"github.com/zipscene/ziplog/src/internal/service"
	"github.com/zipscene/ziplog/src/internal/sink"
	"github.com/zipscene/ziplog/src/internal/transport"
)

// LevelSet builds the configured level set
func (c *Config) LevelSet() (*core.Levels, error) {
	names := c.Producer.Levels
	if len(names) == 0 {
		names = core.DefaultLevelNames
	}
	levels, err := core.NewLevels(names...)
	if err != nil {
		return nil, fmt.Errorf("%w: levels: %w", core.ErrConfiguration, err)
	}
	return levels, nil
}

// ProducerOptions returns the options for producer handles
func (c *Config) ProducerOptions() (logger.Options, error) {
	levels, err := c.LevelSet()
	if err != nil {
		return logger.Options{}, err
	}
	return logger.Options{
		Options: normalize.Options{
			Levels:         levels,
			AppName:        c.Producer.AppName,
			SuppressStack:  c.Producer.SuppressStack,
			DefaultMessage: c.Producer.DefaultMessage,
		},
		MinLevel: c.Producer.MinLevel,
	}, nil
}

// ClientConfig returns the transport client settings
func (c *Config) ClientConfig() transport.ClientConfig {
	dial, write, reconnect, maxReconnect := c.Transport.Durations()
	return transport.ClientConfig{
		Endpoint:          c.Transport.Endpoint,
		SocketDir:         c.Transport.SocketDir,
		DescriptorFile:    c.Transport.DescriptorFile,
		ServerPID:         int(c.Transport.ServerPID),
		InFlightLimit:     int(c.Transport.InFlightLimit),
		MaxPending:        int(c.Transport.MaxPending),
		DialTimeout:       dial,
		WriteTimeout:      write,
		ReconnectDelay:    reconnect,
		MaxReconnectDelay: maxReconnect,
		ReconnectBackoff:  c.Transport.ReconnectBackoff,
	}
}

// ServiceConfig returns the collecting process settings; pid names the socket
func (c *Config) ServiceConfig(pid int) (service.Config, error) {
	levels, err := c.LevelSet()
	if err != nil {
		return service.Config{}, err
	}
	return service.Config{
		Router: sink.RouterConfig{
			Directory:  c.Sink.Directory,
			Levels:     levels,
			MinLevel:   c.Sink.MinLevel,
			KeepDays:   c.Sink.KeepDays.ToKeepDays(),
			Subsystems: c.Sink.SubsystemKeepDays(),
		},
		Transport: transport.ServerConfig{
			SocketDir:      c.Transport.SocketDir,
			DescriptorFile: c.Transport.DescriptorFile,
			PID:            pid,
			Multicore:      c.Transport.Multicore,
		},
		QueueSize: int(c.Transport.QueueSize),
		Status: service.StatusConfig{
			Enabled: c.Status.Enabled,
			Host:    c.Status.Host,
			Port:    c.Status.Port,
		},
	}, nil
}
