/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/siglens/pctlserver/cmd/startup"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
)

func main() {
	startup.InitLogger()
	utils.SetServerStartTime(time.Now())
	err := config.InitConfigurationData()
	if err != nil {
		log.Error("Failed to initialize config! Exiting to avoid misconfigured server...")
		os.Exit(1)
	}

	serverCfg := *config.GetRunningConfig()
	logOut, err := startup.ConfigureLogOutput(serverCfg, "pctlserver.log")
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	log.Infof("----- pctlserver logging to %s ----- \n", logOut)

	configJSON, err := jsoniter.MarshalIndent(serverCfg, "", "  ")
	if err != nil {
		log.Errorf("main : Error marshalling config struct %v", err.Error())
	}
	log.Infof("Running config %s", string(configJSON))

	err = startup.StartPctlServer()
	if err != nil {
		startup.ShutdownPctlServer()
		if serverCfg.Log.LogPrefix != "" {
			startup.StdOutLogger.Errorf("pctlserver main: Error in starting server:%v ", err)
		}
		log.Errorf("pctlserver main: Error in starting server:%v ", err)
		os.Exit(1)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	switch <-ch {
	case os.Interrupt, syscall.SIGTERM, syscall.SIGINT:
		log.Errorf("Interrupt signal received. Exiting server...")
		startup.ShutdownPctlServer()
		log.Errorf("Server shutdown")
		os.Exit(0)
	default:
		log.Errorf("Something went wrong. Exiting server...")
		startup.ShutdownPctlServer()
		log.Errorf("Server shutdown")
		os.Exit(1)
	}
}
