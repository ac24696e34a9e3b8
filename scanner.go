package extspi

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

// fqName is the fully-qualified descriptor file name for a contract:
// its Go import path joined with its type name, the closest Go
// equivalent of a fully-qualified Java interface name and the key
// spec section 4.1 files resources under.
func fqName(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

// Scanner is component C1, the Resource Scanner: it walks a contract's
// configured DiscoveryStrategy roots, reads whatever descriptor file
// exists at each, and forwards every parsed line to the contract's
// ClassRegistry. Parse and registration failures are filed against the
// registry rather than aborting the scan (spec section 4.1's failure
// policy and section 7's aggregated UnknownExtensionError).
type Scanner struct {
	cache *resourceCache
	pool  *linePool
}

// NewScanner creates a Scanner whose descriptor-file cache holds up to
// capacity entries (spec section 4.1/5's soft-reference content cache,
// translated to a bounded LRU per SPEC_FULL.md section 0).
func NewScanner(capacity int) *Scanner {
	return &Scanner{cache: newResourceCache(capacity), pool: newLinePool()}
}

// PoolMetrics reports the Scanner's line-buffer pool hit/miss counts.
func (s *Scanner) PoolMetrics() PoolMetrics {
	return s.pool.snapshot()
}

// Scan loads every descriptor file for contract across strategies, in
// order, filing the result into contract's singleton ClassRegistry.
func (s *Scanner) Scan(contract reflect.Type, strategies []DiscoveryStrategy) {
	reg := registryFor(contract)
	name := fqName(contract)

	if override, ok := specialRootOverrides[name]; ok {
		s.scanOne(reg, override, true)
		return
	}

	for _, st := range strategies {
		s.scanOne(reg, filepath.Join(st.Root, name), st.Overridden)
	}
}

// scanOne reads one descriptor file and files every parsed line into
// reg, treating overridden as the precedence flag for name conflicts
// (spec section 4.1's per-strategy override policy).
func (s *Scanner) scanOne(reg *ClassRegistry, path string, overridden bool) {
	lines, err := s.readLines(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		reg.recordScanError(path, err)
		return
	}

	for _, line := range lines {
		ident, declared, err := parseDescriptorLine(line)
		if err != nil {
			reg.recordScanError(line, err)
			continue
		}
		if ident == "" {
			continue
		}
		if err := reg.register(ident, declared, overridden); err != nil {
			reg.recordScanError(line, err)
		}
	}
}

// readLines returns the non-blank, non-comment lines of path, serving
// from the cache when the path has already been read once - spec
// section 4.1's "parse once, reuse across scans of the same resource".
func (s *Scanner) readLines(path string) ([]string, error) {
	if cached, ok := s.cache.get(path); ok {
		return cached, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := s.pool.acquire()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx > 0 {
			line = strings.TrimSpace(line[:idx])
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		s.pool.release(lines)
		return nil, err
	}

	result := append([]string(nil), lines...)
	s.pool.release(lines)
	s.cache.put(path, result)
	return result, nil
}

// parseDescriptorLine splits one descriptor line into its registration
// identifier and optional declared name(s) - "name=identifier" or a
// bare "identifier" (spec section 4.1: "name,alias=fqcn" or a fqcn on
// its own, treated as anonymous).
func parseDescriptorLine(line string) (identifier string, declaredName string, err error) {
	if idx := strings.Index(line, "="); idx >= 0 {
		name := strings.TrimSpace(line[:idx])
		ident := strings.TrimSpace(line[idx+1:])
		if ident == "" {
			return "", "", fmt.Errorf("%w: empty identifier in line %q", ErrInvalidArgument, line)
		}
		return ident, name, nil
	}
	ident := strings.TrimSpace(line)
	if ident == "" {
		return "", "", nil
	}
	return ident, "", nil
}
