// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"
)

// Report is one benchmark session.
type Report struct {
	SessionTime string     `json:"session_time"`
	System      SystemInfo `json:"system_info"`
	Results     []Result   `json:"results"`
}

// NewReport starts a session stamped with the current time.
func NewReport(system SystemInfo) *Report {
	return &Report{
		SessionTime: time.Now().Format(time.RFC3339),
		System:      system,
	}
}

// Add records res.
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Failed returns the results that did not pass verification.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// LoadReports reads the sessions stored in path. A missing or empty file
// holds no sessions.
func LoadReports(path string) ([]Report, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bench: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sessions []Report
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("bench: decode %s: %w", path, err)
	}
	return sessions, nil
}

// AppendJSON appends r to the sessions stored in path, creating the file
// if needed.
func (r *Report) AppendJSON(path string) error {
	sessions, err := LoadReports(path)
	if err != nil {
		return err
	}
	sessions = append(sessions, *r)
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("bench: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("bench: write %s: %w", path, err)
	}
	return nil
}

// WriteTable writes a Markdown summary of r to w, fastest first.
func (r *Report) WriteTable(w io.Writer) error {
	rows := slices.Clone(r.Results)
	slices.SortStableFunc(rows, func(a, b Result) int {
		switch {
		case a.Throughput > b.Throughput:
			return -1
		case a.Throughput < b.Throughput:
			return 1
		}
		return 0
	})

	if _, err := fmt.Fprintln(w, "| Layout  | Capacity | Producers | Consumers | Throughput (msgs/sec) | Elapsed      | Verified |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---------|----------|-----------|-----------|-----------------------|--------------|----------|"); err != nil {
		return err
	}
	for _, res := range rows {
		verified := "ok"
		if !res.OK() {
			verified = "FAIL"
		}
		_, err := fmt.Fprintf(w, "| %-7s | %8d | %9d | %9d | %21.0f | %12s | %-8s |\n",
			res.Layout, res.Cap, res.Config.Producers, res.Config.Consumers,
			res.Throughput, res.Elapsed.Round(time.Microsecond), verified)
		if err != nil {
			return err
		}
	}
	return nil
}
