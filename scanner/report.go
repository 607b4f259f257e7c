package scanner

import (
	"fmt"
	"sort"
	"strings"
)

// ReportEntry is one open port with its resolved service name.
type ReportEntry struct {
	Port    uint16 `json:"port"`
	Service string `json:"service"`
}

// Report lists the open ports of a completed scan, strictly ascending by
// port number regardless of the order in which the probes finished.
type Report []ReportEntry

// BuildReport filters results down to open ports and orders them by port.
// Closed and Error entries were needed for completion accounting but carry
// no report lines. An empty result set yields an empty report.
func BuildReport(results []ProbeResult) Report {
	report := make(Report, 0, len(results))
	for _, res := range results {
		if res.Status != StatusOpen {
			continue
		}
		report = append(report, ReportEntry{Port: res.Port, Service: res.Service})
	}

	sort.Slice(report, func(i, j int) bool { return report[i].Port < report[j].Port })
	return report
}

// String renders the report, one line per open port.
func (r Report) String() string {
	var b strings.Builder
	for i, entry := range r {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Port %d: %s - Service: %s", entry.Port, StatusOpen, entry.Service)
	}
	return b.String()
}
