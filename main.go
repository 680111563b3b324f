//    Copyright 2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/SwitchHal/pkg/bridge"
	"github.com/binkynet/SwitchHal/pkg/config"
	"github.com/binkynet/SwitchHal/pkg/environment"
	"github.com/binkynet/SwitchHal/pkg/logging"
	"github.com/binkynet/SwitchHal/pkg/server"
	"github.com/binkynet/SwitchHal/pkg/service"
)

const (
	projectName       = "SwitchHal"
	defaultServerPort = 7130
	defaultSSHPort    = 7131
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
)

func main() {
	var levelFlag string
	var configPath string
	var serverHost string
	var serverPort int
	var sshPort int
	var sshHostKeyPath string

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVarP(&configPath, "config", "c", "switches.yaml", "Path of the switch configuration file")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP server will listen on")
	pflag.IntVar(&serverPort, "port", defaultServerPort, "Port the HTTP server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH console will listen on (0 disables)")
	pflag.StringVar(&sshHostKeyPath, "ssh-host-key", ".ssh/id_ed25519", "Path of the SSH host key")
	pflag.Parse()

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())

	mqttWriter := logging.NewMQTTWriter(ctx)
	output := logging.NewMultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, mqttWriter)
	logger := zerolog.New(output).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	}
	logger = logger.Level(level)

	conf, err := config.Load(configPath)
	if err != nil {
		Exitf("Failed to load configuration: %v\n", err)
	}
	conf.ResolveBridges(environment.DetectBridge(logger))

	bridges := bridge.NewSet(logger, bridge.MQTTOptions{
		BrokerAddress: conf.MQTT.Broker,
		ClientID:      conf.MQTT.ClientID,
		TopicPrefix:   conf.MQTT.TopicPrefix,
	})
	closeBridges := func() {
		if err := bridges.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close bridges")
		}
	}
	defer closeBridges()

	svc, err := service.NewService(service.Config{
		Switches: conf.Switches,
		MQTT:     conf.MQTT,
	}, service.Dependencies{
		Logger:    logger,
		Bridges:   bridges,
		LogWriter: mqttWriter,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	httpServer, err := server.New(server.Config{
		Host:           serverHost,
		HTTPPort:       serverPort,
		SSHPort:        sshPort,
		SSHHostKeyPath: sshHostKeyPath,
	}, logger, svc)
	if err != nil {
		closeBridges()
		Exitf("Failed to initialize Server: %v\n", err)
	}

	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if err := g.Wait(); err != nil {
		logger.Error().Err(errors.Cause(err)).Msg("Service run failed")
		closeBridges()
		os.Exit(1)
	}
}

// Exitf prints the given error message and exits with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
