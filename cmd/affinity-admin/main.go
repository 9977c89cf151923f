package main

// main.go implements the affinity-admin CLI: it talks to a running host
// process embedding affinity-core behind the HTTP surface listed below (no
// such host ships in this module) and exposes spec.md §4.11's read-only admin
// operators from the command line — inspect, why, history, reeval, replay,
// toggle, test — plus a watch mode for polling inspect/why on an interval.
//
// The target host is expected to expose:
//
//	GET  /admin/inspect?entity=<id>&actor=<id>
//	GET  /admin/why?entity=<id>&actor=<id>
//	GET  /admin/history?entity=<id>&hours=<n>
//	GET  /admin/reeval?entity=<id>&actor=<id>
//	GET  /admin/replay?trigger=<id>
//	POST /admin/toggle?affordance=<name>&on=<bool>
//	POST /admin/test?entity=<id>&affordance=<name>&branch=hostile|favorable
//
// Every response is decoded into map[string]any to avoid version skew
// between the CLI and the embedding library.
//
// © 2025 affinity-core authors. MIT License.

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var version = "dev"

type options struct {
	target     string
	op         string
	entity     string
	actor      string
	affordance string
	branch     string
	trigger    string
	hours      float64
	on         bool
	json       bool
	watch      bool
	interval   time.Duration
	showVer    bool
}

func main() {
	opts := parseFlags()

	if opts.showVer {
		fmt.Println(version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := runOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := runOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

func parseFlags() *options {
	opts := &options{}
	flag.StringVar(&opts.target, "target", "http://localhost:6080", "base URL of the admin HTTP host")
	flag.StringVar(&opts.op, "op", "inspect", "operator: inspect|why|history|reeval|replay|toggle|test")
	flag.StringVar(&opts.entity, "entity", "", "entity id")
	flag.StringVar(&opts.actor, "actor", "", "actor id (inspect/why)")
	flag.StringVar(&opts.affordance, "affordance", "", "affordance name (toggle/test)")
	flag.StringVar(&opts.branch, "branch", "hostile", "branch for test: hostile|favorable")
	flag.StringVar(&opts.trigger, "trigger", "", "trigger id (replay)")
	flag.Float64Var(&opts.hours, "hours", 24, "history lookback window in hours (0 = unbounded)")
	flag.BoolVar(&opts.on, "on", true, "enable/disable for toggle")
	flag.BoolVar(&opts.json, "json", false, "emit raw JSON instead of pretty text")
	flag.BoolVar(&opts.watch, "watch", false, "poll repeatedly instead of running once")
	flag.DurationVar(&opts.interval, "interval", 5*time.Second, "poll interval in watch mode")
	flag.BoolVar(&opts.showVer, "version", false, "print version and exit")
	flag.Parse()
	return opts
}

func runOnce(ctx context.Context, opts *options) error {
	data, err := dispatch(ctx, opts)
	if err != nil {
		return err
	}
	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return prettyPrint(opts.op, data)
}

func dispatch(ctx context.Context, opts *options) (any, error) {
	switch opts.op {
	case "inspect":
		return fetch(ctx, "GET", opts.target+"/admin/inspect", url.Values{"entity": {opts.entity}, "actor": {opts.actor}})
	case "why":
		return fetch(ctx, "GET", opts.target+"/admin/why", url.Values{"entity": {opts.entity}, "actor": {opts.actor}})
	case "history":
		return fetch(ctx, "GET", opts.target+"/admin/history", url.Values{"entity": {opts.entity}, "hours": {fmt.Sprint(opts.hours)}})
	case "reeval":
		return fetch(ctx, "GET", opts.target+"/admin/reeval", url.Values{"entity": {opts.entity}, "actor": {opts.actor}})
	case "replay":
		return fetch(ctx, "GET", opts.target+"/admin/replay", url.Values{"trigger": {opts.trigger}})
	case "toggle":
		return fetch(ctx, "POST", opts.target+"/admin/toggle", url.Values{"affordance": {opts.affordance}, "on": {fmt.Sprint(opts.on)}})
	case "test":
		return fetch(ctx, "POST", opts.target+"/admin/test", url.Values{"entity": {opts.entity}, "affordance": {opts.affordance}, "branch": {opts.branch}})
	default:
		return nil, fmt.Errorf("unknown op %q", opts.op)
	}
}

func fetch(ctx context.Context, method, base string, params url.Values) (any, error) {
	full := base + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, full, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(op string, data any) error {
	obj, _ := data.(map[string]any)
	switch op {
	case "inspect":
		fmt.Printf("Affinity:  %v\n", obj["Affinity"])
		fmt.Printf("Threshold: %v\n", obj["ThresholdLabel"])
	case "why":
		fmt.Printf("Affinity:     %v\n", obj["Affinity"])
		fmt.Printf("Personal:     %v\n", obj["Personal"])
		fmt.Printf("Group:        %v\n", obj["Group"])
		fmt.Printf("Behavior:     %v\n", obj["Behavior"])
		fmt.Printf("Institutional:%v\n", obj["Institutional"])
	case "reeval":
		fmt.Printf("Affinity: %v\n", obj["affinity"])
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "affinity-admin:", err)
	os.Exit(1)
}
