package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader reads typed environment variables, remembering every value it could not parse.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (r *envReader) str(key, def string) string {
	if value, ok := r.lookup(key); ok {
		return value
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, errors.New("not an integer"))
		return def
	}
	return n
}

func (r *envReader) bool(key string, def bool) bool {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, errors.New("not a boolean"))
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, errors.New("not a duration"))
		return def
	}
	return d
}

// location resolves an IANA zone name such as "Asia/Kolkata".
func (r *envReader) location(key string, def *time.Location) *time.Location {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		r.fail(key, value, errors.New("not a known time zone"))
		return def
	}
	return loc
}

// list splits a comma separated value, dropping empty items.
func (r *envReader) list(key string, def []string) []string {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}

// cidrs parses a comma separated list of ranges such as "10.0.0.0/8,192.0.2.10/32".
func (r *envReader) cidrs(key string) []*net.IPNet {
	var ranges []*net.IPNet
	for _, item := range r.list(key, nil) {
		_, ipNet, err := net.ParseCIDR(item)
		if err != nil {
			r.fail(key, item, errors.New("not a CIDR range"))
			continue
		}
		ranges = append(ranges, ipNet)
	}
	return ranges
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
