// Package validate holds the syntax checks applied to host records.
package validate

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/wolbook/internal/model"
)

var (
	colonMAC  = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)
	hyphenMAC = regexp.MustCompile(`^[0-9A-Fa-f]{2}(-[0-9A-Fa-f]{2}){5}$`)
	ddnsName  = regexp.MustCompile(`^([A-Za-z0-9-]{1,63}\.)+[A-Za-z]{2,}$`)
)

// ValidationError reports the first field of a record that failed its check.
type ValidationError struct {
	Field model.Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s", e.Field.Label())
}

// ParseAddress parses a dotted-quad IPv4 address. Each octet is one to three
// decimal digits; leading zeros are allowed and read as decimal.
func ParseAddress(s string) (net.IP, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil, false
	}
	ip := make(net.IP, net.IPv4len)
	for i, part := range parts {
		if len(part) == 0 || len(part) > 3 {
			return nil, false
		}
		n := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return nil, false
		}
		ip[i] = byte(n)
	}
	return ip, true
}

// IsValidAddress reports whether s is a dotted-quad IPv4 address.
func IsValidAddress(s string) bool {
	_, ok := ParseAddress(s)
	return ok
}

// IsValidHardwareAddress reports whether s is six hex pairs joined uniformly
// by ':' or '-'.
func IsValidHardwareAddress(s string) bool {
	return colonMAC.MatchString(s) || hyphenMAC.MatchString(s)
}

// IsValidPort reports whether p is a usable UDP port.
func IsValidPort(p int) bool {
	return p >= 1 && p <= 65535
}

// ParsePort parses s as a port number and range-checks it.
func ParsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if !IsValidPort(p) {
		return 0, fmt.Errorf("port %d out of range 1-65535", p)
	}
	return p, nil
}

// IsValidDynamicName reports whether s looks like a fully-qualified hostname.
func IsValidDynamicName(s string) bool {
	if len(s) == 0 || len(s) > 253 || strings.HasPrefix(s, "-") {
		return false
	}
	return ddnsName.MatchString(s)
}

// ValidateRecord checks address, hardware address and port, in that order,
// and returns a *ValidationError for the first failure.
func ValidateRecord(r model.HostRecord) error {
	if !IsValidAddress(r.Address) {
		return &ValidationError{Field: model.FieldAddress}
	}
	if !IsValidHardwareAddress(r.HardwareAddress) {
		return &ValidationError{Field: model.FieldHardwareAddress}
	}
	if !IsValidPort(r.Port) {
		return &ValidationError{Field: model.FieldPort}
	}
	return nil
}
