// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

// Package common holds process-wide configuration and small debugging
// helpers shared by every storage and concurrency package.
package common

import "time"

const (
	defaultPageSize = 4096

	// DefaultPages is the buffer pool capacity used when none is given
	// explicitly; buffer.NewDefaultPool uses it.
	DefaultPages = 50

	// MinHistogramBuckets is the floor NumHistBins may be configured to.
	MinHistogramBuckets = 100

	// DefaultIOCostPerPage is the unit cost TableStats charges for reading
	// a single page during a sequential scan.
	DefaultIOCostPerPage = 1000
)

// pageSize is process-wide and mutable only so tests can exercise small
// pages without recompiling. Production code should never call SetPageSize.
var pageSize = defaultPageSize

// PageSize returns the number of bytes occupied by a single page on disk
// and in the buffer pool.
func PageSize() int { return pageSize }

// SetPageSize overrides PageSize. THIS FUNCTION SHOULD ONLY BE USED FOR TESTING.
func SetPageSize(n int) { pageSize = n }

// ResetPageSize restores PageSize to its default of 4096 bytes.
func ResetPageSize() { pageSize = defaultPageSize }

// numHistBins is the bucket count new histograms are built with.
var numHistBins = MinHistogramBuckets

// NumHistBins returns the number of buckets TableStats gives each histogram.
func NumHistBins() int { return numHistBins }

// SetNumHistBins overrides NumHistBins. Panics if n < MinHistogramBuckets,
// so the configured bucket count is never below 100 (a histogram over a
// narrower value range still clamps its own bucket count to that range).
func SetNumHistBins(n int) {
	if n < MinHistogramBuckets {
		panic("common: NumHistBins must be >= MinHistogramBuckets")
	}
	numHistBins = n
}

// ResetNumHistBins restores NumHistBins to MinHistogramBuckets.
func ResetNumHistBins() { numHistBins = MinHistogramBuckets }

// ioCostPerPage is the per-page I/O cost TableStats.EstimateScanCost charges.
var ioCostPerPage = DefaultIOCostPerPage

// IOCostPerPage returns the configured per-page scan cost.
func IOCostPerPage() int { return ioCostPerPage }

// SetIOCostPerPage overrides IOCostPerPage. THIS FUNCTION SHOULD ONLY BE USED FOR TESTING.
func SetIOCostPerPage(n int) { ioCostPerPage = n }

// ResetIOCostPerPage restores IOCostPerPage to DefaultIOCostPerPage.
func ResetIOCostPerPage() { ioCostPerPage = DefaultIOCostPerPage }

// SharedLockTimeout and ExclusiveLockTimeout bound the randomized window the
// lock manager waits before self-aborting a blocked acquirer. The ranges are
// deliberately disjoint: making exclusive waiters wait longer on average
// reduces symmetric livelock between two transactions racing for the same page.
const (
	SharedLockTimeoutMin    = 33 * time.Millisecond
	SharedLockTimeoutSpread = 333 * time.Millisecond // [33, 366)

	ExclusiveLockTimeoutMin    = 444 * time.Millisecond
	ExclusiveLockTimeoutSpread = 100 * time.Millisecond // [444, 544)
)

var (
	EnableDebug bool
)
