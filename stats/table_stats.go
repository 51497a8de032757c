package stats

import (
	"fmt"

	"github.com/kavedb/ledgerdb/catalog"
	"github.com/kavedb/ledgerdb/common"
	"github.com/kavedb/ledgerdb/concurrency/txn"
	"github.com/kavedb/ledgerdb/storage/buffer"
	"github.com/kavedb/ledgerdb/storage/heap"
	"github.com/kavedb/ledgerdb/storage/pageid"
	"github.com/kavedb/ledgerdb/storage/tuple"
)

// TableStats holds per-column histograms and whole-table counts for one
// table, built by a two-pass scan: the first pass finds each integer
// column's range so its histogram can be sized, the second populates
// every histogram. Grounded on simpledb's TableStats (see
// original_source/src/java/simpledb/optimizer/TableStats.java), generalized
// away from a single process-wide static map so callers own their own
// TableStats instances and can recompute them whenever they choose.
type TableStats struct {
	tableID       pageid.TableID
	ioCostPerPage int
	desc          *tuple.TupleDesc

	intHist map[int]*IntHistogram
	strHist map[int]*StringHistogram

	totalTuples int
	numPages    int
}

// NewTableStats scans every page of tableID's file, through pool, and
// builds its histograms. ioCostPerPage is the per-page cost
// EstimateScanCost charges; callers typically pass common.IOCostPerPage().
func NewTableStats(tableID pageid.TableID, ioCostPerPage int, cat catalog.Catalog, pool *buffer.Pool) (*TableStats, error) {
	file, err := cat.GetDatabaseFile(tableID)
	if err != nil {
		return nil, err
	}
	desc := file.TupleDesc()
	numPages, err := file.NumPages()
	if err != nil {
		return nil, err
	}

	tid := txn.NewID()
	defer pool.TransactionComplete(tid, true)

	mins := make(map[int]int64)
	maxs := make(map[int]int64)
	seen := make(map[int]bool)
	totalTuples := 0

	scanPages := func(visit func(row *tuple.Tuple)) error {
		for pageNo := 0; pageNo < numPages; pageNo++ {
			pid := pageid.PageID{TableID: tableID, PageNo: int32(pageNo)}
			page, err := pool.GetPage(tid, pid, heap.ReadOnly)
			if err != nil {
				return err
			}
			it := page.Iterator()
			for {
				row, ok := it.Next()
				if !ok {
					break
				}
				visit(row)
			}
		}
		return nil
	}

	if err := scanPages(func(row *tuple.Tuple) {
		totalTuples++
		for j, fd := range desc.Fields {
			if fd.Type != tuple.IntType {
				continue
			}
			v := fieldValue(row.Fields[j])
			if !seen[j] {
				mins[j], maxs[j] = v, v
				seen[j] = true
				continue
			}
			if v < mins[j] {
				mins[j] = v
			}
			if v > maxs[j] {
				maxs[j] = v
			}
		}
	}); err != nil {
		return nil, err
	}

	intHist := make(map[int]*IntHistogram)
	strHist := make(map[int]*StringHistogram)
	for j, fd := range desc.Fields {
		if fd.Type == tuple.IntType {
			intHist[j] = NewIntHistogram(common.NumHistBins(), mins[j], maxs[j])
		} else {
			strHist[j] = NewStringHistogram(common.NumHistBins())
		}
	}

	if err := scanPages(func(row *tuple.Tuple) {
		for j, fd := range desc.Fields {
			if fd.Type == tuple.IntType {
				intHist[j].AddValue(fieldValue(row.Fields[j]))
			} else {
				strHist[j].AddValue(row.Fields[j].(tuple.StringField).Value)
			}
		}
	}); err != nil {
		return nil, err
	}

	return &TableStats{
		tableID:       tableID,
		ioCostPerPage: ioCostPerPage,
		desc:          desc,
		intHist:       intHist,
		strHist:       strHist,
		totalTuples:   totalTuples,
		numPages:      numPages,
	}, nil
}

// EstimateScanCost is the charged cost of a full sequential scan,
// assuming nothing is cached: every page is read twice (once for its
// data, once as if seeking past it), at ioCostPerPage each.
func (s *TableStats) EstimateScanCost() float64 {
	return 2 * float64(s.numPages) * float64(s.ioCostPerPage)
}

// EstimateTableCardinality is the expected row count after applying a
// predicate of the given selectivity.
func (s *TableStats) EstimateTableCardinality(selectivity float64) int {
	return int(float64(s.totalTuples) * selectivity)
}

// TotalTuples returns the row count observed when the stats were built.
func (s *TableStats) TotalTuples() int { return s.totalTuples }

// AvgSelectivity is the histogram-averaged selectivity for field, used
// when no concrete comparison value is available yet.
func (s *TableStats) AvgSelectivity(field int) (float64, error) {
	if h, ok := s.intHist[field]; ok {
		return h.AvgSelectivity(), nil
	}
	if h, ok := s.strHist[field]; ok {
		return h.AvgSelectivity(), nil
	}
	return 0, fmt.Errorf("stats: no histogram for field %d", field)
}

// EstimateSelectivity returns the estimated fraction of rows satisfying
// `field op value`.
func (s *TableStats) EstimateSelectivity(field int, op Op, value tuple.Field) (float64, error) {
	switch v := value.(type) {
	case tuple.IntField:
		h, ok := s.intHist[field]
		if !ok {
			return 0, fmt.Errorf("stats: field %d is not an int histogram", field)
		}
		return h.EstimateSelectivity(op, int64(v.Value)), nil
	case tuple.StringField:
		h, ok := s.strHist[field]
		if !ok {
			return 0, fmt.Errorf("stats: field %d is not a string histogram", field)
		}
		return h.EstimateSelectivity(op, v.Value), nil
	default:
		return 0, fmt.Errorf("stats: unsupported field type %T", value)
	}
}
