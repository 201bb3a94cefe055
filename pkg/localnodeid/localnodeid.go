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

package localnodeid

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lithammer/shortuuid/v4"
	"github.com/siglens/pctlserver/pkg/config"
	log "github.com/sirupsen/logrus"
)

const nodeIdFileName = "id.info"

var idLock sync.Mutex
var runningNodeId string
var initIDFile bool // set when this process created the id file

func getCommonDir(dataPath string) string {
	return filepath.Join(dataPath, "common")
}

// loadOrCreate reads the node id stored under dataPath, creating it on first use.
// The id is still returned when it cannot be persisted.
func loadOrCreate(dataPath string) (string, bool) {
	fName := filepath.Join(getCommonDir(dataPath), nodeIdFileName)
	if readID, err := os.ReadFile(fName); err == nil {
		id := strings.TrimSpace(string(readID))
		if id != "" {
			return id, false
		}
	}

	nodeUUID := shortuuid.New()
	if err := os.MkdirAll(getCommonDir(dataPath), 0755); err != nil {
		log.Errorf("loadOrCreate: failed to create common directory %v, err=%v", getCommonDir(dataPath), err)
		return nodeUUID, false
	}
	if err := os.WriteFile(fName, []byte(nodeUUID), 0444); err != nil {
		log.Errorf("loadOrCreate: failed to write node id file %v, err=%v", fName, err)
		return nodeUUID, false
	}
	return nodeUUID, true
}

// returns true if this process created the node id file
func IsInitServer() bool {
	idLock.Lock()
	defer idLock.Unlock()
	return initIDFile
}

func GetRunningNodeID() string {
	idLock.Lock()
	defer idLock.Unlock()
	if runningNodeId == "" {
		runningNodeId, initIDFile = loadOrCreate(config.GetDataPath())
	}
	return runningNodeId
}
