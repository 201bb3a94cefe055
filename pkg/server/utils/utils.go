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

package server_utils

const API_PREFIX string = "/api"

const (
	PERCENTILE_PATH     = API_PREFIX + "/percentile"
	DATASETS_PATH       = API_PREFIX + "/datasets"
	HEALTH_PATH         = API_PREFIX + "/health"
	CONFIG_PATH         = API_PREFIX + "/config"
	CONFIG_RELOAD_PATH  = API_PREFIX + "/config/reload"
	SAMPLE_DATASET_PATH = API_PREFIX + "/sampledataset_bulk"
	SYSTEM_INFO_PATH    = API_PREFIX + "/system-info"
	DIAGNOSTICS_PATH    = API_PREFIX + "/diagnostics"
)
