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

package utils

import (
	"sync"
	"time"
)

var serverStartTime time.Time
var startTimeLock sync.RWMutex

func SetServerStartTime(t time.Time) {
	startTimeLock.Lock()
	serverStartTime = t
	startTimeLock.Unlock()
}

func GetServerStartTime() time.Time {
	startTimeLock.RLock()
	defer startTimeLock.RUnlock()
	return serverStartTime
}

// ToFixedSeconds truncates d to whole microseconds and returns it in seconds.
func ToFixedSeconds(d time.Duration) float64 {
	return d.Truncate(time.Microsecond).Seconds()
}
