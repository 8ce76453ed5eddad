/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"fmt"
	"strings"

	"code.cloudfoundry.org/bytefmt"
)

// BytesCount represents a size in bytes. It may be configured both as an integer
// and as a human-readable string (e.g. "250M", "1Gi").
type BytesCount uint64

// String returns the human-readable string representation.
func (b BytesCount) String() string {
	return bytefmt.ByteSize(uint64(b))
}

// ParseBytesCount parses a human-readable size. Kubernetes power-of-two suffixes (Ki, Mi, ...) are accepted.
func ParseBytesCount(s string) (BytesCount, error) {
	v := strings.TrimSpace(s)
	for _, k8sByteSuffix := range [...]string{"Ki", "Mi", "Gi", "Ti", "Pi", "Ei"} {
		if strings.HasSuffix(v, k8sByteSuffix) {
			v = v[:len(v)-1]
			break
		}
	}
	num, err := bytefmt.ToBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid bytes format (%s): %w", s, err)
	}
	return BytesCount(num), nil
}
