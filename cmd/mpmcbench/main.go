// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command mpmcbench sweeps producer and consumer counts over both queue
// layouts, verifies every run, and reports throughput.
//
// Usage:
//
//	mpmcbench [flags]
//
// Examples:
//
//	mpmcbench -producers 1,2,4 -consumers 1,2,4 -progress
//	mpmcbench -layouts compact -capacity 1000 -items 1000000 -pin
//	mpmcbench -json results.json
//	mpmcbench -markdown-table -jsonfile results.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"code.hybscloud.com/mpmc"
	"code.hybscloud.com/mpmc/internal/bench"
)

func main() {
	producers := flag.String("producers", "1,2,4,8", "Comma-separated producer counts")
	consumers := flag.String("consumers", "1,2,4,8", "Comma-separated consumer counts")
	layouts := flag.String("layouts", "padded,compact", "Comma-separated layouts to test")
	items := flag.Int("items", bench.DefaultItemsPerProducer, "Items pushed by each producer")
	capacity := flag.Int("capacity", bench.DefaultCapacity, "Requested queue capacity")
	iterations := flag.Int("iter", 1, "Iterations per configuration")
	pin := flag.Bool("pin", false, "Pin each worker to a CPU")
	jitter := flag.Uint("jitter", 0, "If non-zero, producers yield after a push with probability 1/jitter")
	timeout := flag.Duration("timeout", bench.DefaultTimeout, "Abort a run that takes longer than this")
	jsonPath := flag.String("json", "", "Append the session to this JSON file")
	markdownTable := flag.Bool("markdown-table", false, "Output a markdown table for the last session in -jsonfile and exit")
	jsonFile := flag.String("jsonfile", "test-results.json", "Path to JSON file for -markdown-table")
	progress := flag.Bool("progress", false, "Display a progress bar with ETA")
	flag.Parse()

	if *markdownTable {
		if err := outputMarkdownTable(os.Stdout, *jsonFile); err != nil {
			fatal(err)
		}
		return
	}

	pCounts, err := parseCounts(*producers)
	if err != nil {
		fatal(fmt.Errorf("-producers: %w", err))
	}
	cCounts, err := parseCounts(*consumers)
	if err != nil {
		fatal(fmt.Errorf("-consumers: %w", err))
	}
	ls, err := parseLayouts(*layouts)
	if err != nil {
		fatal(fmt.Errorf("-layouts: %w", err))
	}
	if *iterations < 1 {
		fatal(fmt.Errorf("-iter: %d < 1", *iterations))
	}

	var configs []bench.Config
	for _, l := range ls {
		for _, p := range pCounts {
			for _, c := range cCounts {
				cfg := bench.Config{
					Producers:        p,
					Consumers:        c,
					ItemsPerProducer: *items,
					Capacity:         *capacity,
					Layout:           l,
					Pin:              *pin,
					Jitter:           uint32(*jitter),
					Timeout:          *timeout,
				}.WithDefaults()
				if err := cfg.Validate(); err != nil {
					fatal(err)
				}
				configs = append(configs, cfg)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report := bench.NewReport(bench.GatherSystemInfo())
	sys := report.System
	fmt.Printf("GOMAXPROCS=%d CPUs=%d model=%q go=%s\n", sys.GOMAXPROCS, sys.NumCPU, sys.CPUModel, sys.GoVersion)

	bar := progressbar.NewOptions(len(configs)*(*iterations),
		progressbar.OptionSetVisibility(*progress),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)

	for _, cfg := range configs {
		for iteration := 1; iteration <= *iterations; iteration++ {
			bar.Describe(cfg.String())
			runtime.GC()

			res, err := bench.Run(ctx, cfg)
			report.Add(res)
			_ = bar.Add(1)

			if *progress {
				// Keep result lines off the progress line.
				_ = bar.Clear()
			}
			status := "ok"
			if !res.OK() {
				status = "FAIL"
			}
			fmt.Printf("  %s [%d/%d] => popped=%d, throughput=%.0f msg/s, took=%v, %s\n",
				cfg, iteration, *iterations, res.Popped, res.Throughput, res.Elapsed, status)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", cfg, err)
				if ctx.Err() != nil {
					break
				}
			}
		}
		if ctx.Err() != nil {
			break
		}
	}
	_ = bar.Finish()

	fmt.Println()
	if err := report.WriteTable(os.Stdout); err != nil {
		fatal(err)
	}

	if *jsonPath != "" {
		if err := report.AppendJSON(*jsonPath); err != nil {
			fatal(err)
		}
		fmt.Printf("\nWrote results to %s\n", *jsonPath)
	}

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d runs failed verification\n", len(failed), len(report.Results))
		os.Exit(1)
	}
}

// outputMarkdownTable prints the last session stored in path.
func outputMarkdownTable(w io.Writer, path string) error {
	sessions, err := bench.LoadReports(path)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions found in %s", path)
	}
	last := sessions[len(sessions)-1]
	fmt.Fprintf(w, "## Session %s (%s, %d CPUs)\n\n", last.SessionTime, last.System.CPUModel, last.System.NumCPU)
	return last.WriteTable(w)
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("count %d < 1", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return counts, nil
}

func parseLayouts(s string) ([]mpmc.Layout, error) {
	var ls []mpmc.Layout
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		l, ok := mpmc.ParseLayout(f)
		if !ok {
			return nil, fmt.Errorf("unknown layout %q", f)
		}
		ls = append(ls, l)
	}
	if len(ls) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return ls, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "mpmcbench:", err)
	os.Exit(1)
}
