package scanner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// ServiceUnknown is the placeholder label for ports without a known service.
const ServiceUnknown = "Unknown"

// ServiceTable maps well-known port numbers to service names. It is built
// once and read-only afterwards, so it is safe to share across probes.
type ServiceTable struct {
	entries map[uint16]string
}

// Lookup returns the service name registered for port.
func (t *ServiceTable) Lookup(port uint16) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.entries[port]
	return name, ok
}

// Len returns the number of registered entries.
func (t *ServiceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ParseServices reads a line-oriented reference file of the form
//
//	name  port  [protocol]
//
// Lines starting with '#' and blank lines are skipped. A line qualifies as
// an entry only when it has at least two tokens and the second token is a
// non-negative integer; otherwise it is skipped silently. When the service
// name token is missing the entry is recorded as "Unknown".
func ParseServices(r io.Reader) *ServiceTable {
	entries := make(map[uint16]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		port, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			continue
		}

		name := ServiceUnknown
		if len(parts) > 2 {
			name = parts[2]
		}
		entries[uint16(port)] = name
	}

	return &ServiceTable{entries: entries}
}

// LoadServices builds a ServiceTable from a reference file on disk.
// Individual malformed lines never fail the load; only an unreadable file
// does.
func LoadServices(path string) (*ServiceTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load service registry %s: %w", path, err)
	}
	defer file.Close()

	return ParseServices(file), nil
}

const systemServicesPath = "/etc/services"

var (
	systemOnce  sync.Once
	systemTable *ServiceTable
)

// systemServices parses the OS service database once per process. A missing
// or unreadable database yields an empty table rather than an error; the
// reference file then carries the lookup alone.
func systemServices() *ServiceTable {
	systemOnce.Do(func() {
		file, err := os.Open(systemServicesPath)
		if err != nil {
			systemTable = &ServiceTable{entries: map[uint16]string{}}
			return
		}
		defer file.Close()
		systemTable = parseSystemServices(file)
	})
	return systemTable
}

// parseSystemServices handles the /etc/services layout, where the second
// token is "port/protocol". Only TCP entries are kept; this is a TCP-only
// scanner.
func parseSystemServices(r io.Reader) *ServiceTable {
	entries := make(map[uint16]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		portProto := strings.SplitN(parts[1], "/", 2)
		if len(portProto) != 2 || portProto[1] != "tcp" {
			continue
		}
		port, err := strconv.ParseUint(portProto[0], 10, 16)
		if err != nil {
			continue
		}
		if _, dup := entries[uint16(port)]; dup {
			continue
		}
		entries[uint16(port)] = parts[0]
	}

	return &ServiceTable{entries: entries}
}

// Directory resolves service names for open ports. The OS service database
// takes precedence over the loaded reference table; a port absent from both
// resolves to "Unknown".
type Directory struct {
	system   *ServiceTable
	registry *ServiceTable
}

// NewDirectory builds a Directory backed by the OS service database and the
// given reference table. registry may be nil.
func NewDirectory(registry *ServiceTable) *Directory {
	return &Directory{system: systemServices(), registry: registry}
}

// NewDirectoryWithSystem builds a Directory with an explicit system table,
// bypassing /etc/services. Used by tests to pin lookup precedence.
func NewDirectoryWithSystem(system, registry *ServiceTable) *Directory {
	return &Directory{system: system, registry: registry}
}

// Name returns the conventional service name for port.
func (d *Directory) Name(port uint16) string {
	if d == nil {
		return ServiceUnknown
	}
	if name, ok := d.system.Lookup(port); ok {
		return name
	}
	if name, ok := d.registry.Lookup(port); ok {
		return name
	}
	return ServiceUnknown
}
