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

package systemconfig

import (
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/valyala/fasthttp"

	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/localnodeid"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
)

type SystemInfo struct {
	NodeId string     `json:"node_id"`
	OS     string     `json:"os"`
	VCPU   int        `json:"v_cpu"`
	Memory MemoryInfo `json:"memory"`
	Disk   DiskInfo   `json:"disk"`
	Uptime int        `json:"uptime"`
}

type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// Usage of the filesystem holding the data path, which is where the sqlite file lives.
type DiskInfo struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

func CollectSystemInfo(dataPath string) (*SystemInfo, error) {
	vcpu, err := cpu.Counts(true)
	if err != nil {
		log.Errorf("CollectSystemInfo: Failed to retrieve CPU info: %v", err)
		return nil, err
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		log.Errorf("CollectSystemInfo: Failed to retrieve memory info: %v", err)
		return nil, err
	}

	diskInfo, err := disk.Usage(dataPath)
	if err != nil {
		log.Errorf("CollectSystemInfo: Failed to retrieve disk info for %v: %v", dataPath, err)
		return nil, err
	}

	hostInfo, err := host.Info()
	if err != nil {
		log.Errorf("CollectSystemInfo: Failed to retrieve host info: %v", err)
		return nil, err
	}

	uptime := 0
	if started := utils.GetServerStartTime(); !started.IsZero() {
		uptime = int(math.Round(time.Since(started).Minutes()))
	}

	return &SystemInfo{
		NodeId: localnodeid.GetRunningNodeID(),
		OS:     hostInfo.OS,
		VCPU:   vcpu,
		Memory: MemoryInfo{
			Total:       memInfo.Total,
			Free:        memInfo.Available,
			UsedPercent: memInfo.UsedPercent,
		},
		Disk: DiskInfo{
			Path:        dataPath,
			Total:       diskInfo.Total,
			Free:        diskInfo.Free,
			UsedPercent: diskInfo.UsedPercent,
		},
		Uptime: uptime,
	}, nil
}

func GetSystemInfo(ctx *fasthttp.RequestCtx) {
	systemInfo, err := CollectSystemInfo(config.GetDataPath())
	if err != nil {
		utils.SendInternalError(ctx, "Failed to retrieve system info", "", err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, systemInfo)
}
