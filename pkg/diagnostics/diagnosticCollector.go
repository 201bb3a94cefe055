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

package diagnostics

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/localnodeid"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	systemconfig "github.com/siglens/pctlserver/pkg/systemConfig"
	"github.com/siglens/pctlserver/pkg/tracing"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type DatasetDescriber interface {
	DescribeDatasets(ctx context.Context) pctlquery.DatasetsReport
}

func writeJsonEntry(zipWriter *zip.Writer, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("writeJsonEntry: failed to marshal %v, err=%w", name, err)
	}
	entry, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("writeJsonEntry: failed to create zip entry %v, err=%w", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("writeJsonEntry: failed to write zip entry %v, err=%w", name, err)
	}
	return nil
}

// BuildBundle zips the running config, a dataset report and host information.
// Host information is best effort: a failure is recorded in system-info.json.
func BuildBundle(ctx context.Context, describer DatasetDescriber) ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	if err := writeJsonEntry(zipWriter, "config.json", config.GetRunningConfig()); err != nil {
		return nil, err
	}
	if err := writeJsonEntry(zipWriter, "datasets.json", describer.DescribeDatasets(ctx)); err != nil {
		return nil, err
	}

	var sysInfo interface{}
	info, err := systemconfig.CollectSystemInfo(config.GetDataPath())
	if err != nil {
		sysInfo = map[string]string{"error": err.Error()}
	} else {
		sysInfo = info
	}
	if err := writeJsonEntry(zipWriter, "system-info.json", sysInfo); err != nil {
		return nil, err
	}

	nodeFile, err := zipWriter.Create("node-id.txt")
	if err != nil {
		return nil, err
	}
	if _, err := nodeFile.Write([]byte(localnodeid.GetRunningNodeID())); err != nil {
		return nil, err
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("BuildBundle: failed to close zip file, err=%w", err)
	}
	return buf.Bytes(), nil
}

func CollectDiagnosticsAPI(ctx *fasthttp.RequestCtx, describer DatasetDescriber) {
	bundle, err := BuildBundle(tracing.RequestContext(ctx), describer)
	if err != nil {
		utils.SendInternalError(ctx, "Failed to build diagnostics bundle", "", err)
		return
	}
	log.Infof("CollectDiagnosticsAPI: built diagnostics bundle of %v bytes", len(bundle))

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/zip")
	ctx.Response.Header.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=pctlserver-diagnostics-%s.zip",
			time.Now().Format("2006-01-02-15-04-05")))
	ctx.SetBody(bundle)
}
