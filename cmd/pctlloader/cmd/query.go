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

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	"github.com/siglens/pctlserver/pkg/percentile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "run a percentile query against a running pctlserver",
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")
		dataset, _ := cmd.Flags().GetString("dataset")
		p, _ := cmd.Flags().GetInt("percentile")
		method, _ := cmd.Flags().GetString("method")
		showTrace, _ := cmd.Flags().GetBool("trace")

		result, err := runQuery(&fasthttp.Client{}, dest, dataset, p, method)
		if err != nil {
			return err
		}
		fmt.Printf("%v percentile %v of %v = %v (%.6fs)\n", result.Method, result.Percentile,
			result.Dataset, result.Value, result.DurationSeconds)
		if showTrace && result.Diagnostics != nil {
			for _, rec := range result.Diagnostics.Iterations {
				fmt.Printf("  iteration %2d  guess=%-22v estimated=%v\n", rec.Iteration, rec.Guess, rec.Estimated)
			}
			fmt.Printf("  stopped: %v\n", result.Diagnostics.StopReason)
		}
		return nil
	},
}

func buildQueryURL(dest string, dataset string, p int, method string) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("percentile", strconv.Itoa(p))
	args.Set("method", method)
	if dataset != "" {
		args.Set("dataset", dataset)
	}
	return strings.TrimSuffix(dest, "/") + "/api/percentile?" + args.String()
}

func runQuery(client *fasthttp.Client, dest string, dataset string, p int, method string) (*pctlquery.Result, error) {
	if err := percentile.ValidatePercentile(p); err != nil {
		return nil, fmt.Errorf("runQuery: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	url := buildQueryURL(dest, dataset, p, method)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	start := time.Now()
	if err := client.DoTimeout(req, resp, 5*time.Minute); err != nil {
		return nil, fmt.Errorf("runQuery: request to %v failed: %w", url, err)
	}
	log.Debugf("runQuery: %v returned %v in %v", url, resp.StatusCode(), time.Since(start))

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("runQuery: %v returned %v: %s", url, resp.StatusCode(), resp.Body())
	}
	result := &pctlquery.Result{}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return nil, fmt.Errorf("runQuery: bad response body: %w", err)
	}
	return result, nil
}

func init() {
	queryCmd.Flags().StringP("dest", "d", "http://localhost:5122", "Server URL.")
	queryCmd.Flags().StringP("dataset", "a", "", "dataset name, the server's primary dataset when empty")
	queryCmd.Flags().IntP("percentile", "p", pctlquery.DEFAULT_PERCENTILE, "percentile in [0, 100]")
	queryCmd.Flags().StringP("method", "m", "exact", "estimation method. Options=[exact,iterative]")
	queryCmd.Flags().BoolP("trace", "t", false, "print the iteration trace of the iterative method")
}
