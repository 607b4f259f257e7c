package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"sonar/logging"
	"sonar/scanner"
)

// DefaultServicesFile is the reference data file consulted when no
// --services flag is given.
const DefaultServicesFile = "well-known-ports.txt"

// Run is the entry point for the command line shell. It parses flags and
// arguments, validates them before any network activity, drives a scan with
// a progress indicator on stderr, and prints the final report.
func Run() {
	jsonOutput := flag.Bool("json", false, "Output the report in JSON format")
	portsSpec := flag.String("p", "0-1023", "Port range to scan, startPort-endPort")
	timeout := flag.Duration("t", scanner.DefaultTimeout, "Per-probe connect timeout")
	maxInFlight := flag.Int64("c", scanner.DefaultMaxInFlight, "Maximum concurrently in-flight probes")
	servicesFile := flag.String("services", DefaultServicesFile, "Well-known port reference file")
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(2)
	}
	host := flag.Arg(0)

	portRange, err := scanner.ParsePortRange(*portsSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	directory, err := loadDirectory(*servicesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	coord := scanner.New(directory)
	coord.Timeout = *timeout
	coord.MaxInFlight = *maxInFlight

	total := int64(portRange.Count())
	var done atomic.Int64
	var lastPercent atomic.Int64
	lastPercent.Store(-1)
	coord.OnProgress = func() {
		percent := done.Add(1) * 100 / total
		if prev := lastPercent.Load(); percent > prev && lastPercent.CompareAndSwap(prev, percent) {
			fmt.Fprintf(os.Stderr, "\rScanning... %d%%", percent)
		}
	}

	// Ctrl-C stops submitting new probes and lets in-flight ones finish.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	report, err := coord.Start(ctx, host, portRange)
	fmt.Fprint(os.Stderr, "\r")
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrInvalidHost):
			fmt.Fprintln(os.Stderr, "Invalid host address")
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "Scan cancelled")
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	logging.Logger().Info("scan completed",
		"host", host,
		"ports", portRange.Count(),
		"open", len(report),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)

	if *jsonOutput {
		outputJSON(report)
		return
	}
	if len(report) == 0 {
		fmt.Println("No open ports found")
		return
	}
	fmt.Println(report.String())
}

// loadDirectory builds the service name directory. A missing default file
// degrades to OS-database-only lookups with a warning; an explicitly
// requested file that cannot be read is fatal.
func loadDirectory(path string) (*scanner.Directory, error) {
	table, err := scanner.LoadServices(path)
	if err != nil {
		if path == DefaultServicesFile && errors.Is(err, os.ErrNotExist) {
			logging.Logger().Warn("service registry not found, continuing without it", "path", path)
			return scanner.NewDirectory(nil), nil
		}
		return nil, err
	}
	return scanner.NewDirectory(table), nil
}

func outputJSON(report scanner.Report) {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding to JSON: %v\n", err)
		return
	}
	fmt.Println(string(jsonData))
}

func printUsage() {
	fmt.Println("Usage: sonar [--json] [-p startPort-endPort] [-t timeout] [-c maxInFlight] host")
	fmt.Println("Example: sonar -p 20-80 scanme.nmap.org")
	fmt.Println("Example: sonar --json -p 0-1023 -t 500ms 127.0.0.1")
	fmt.Println("Run the REST API instead with: sonar serve")
}
