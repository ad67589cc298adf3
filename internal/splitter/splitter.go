// Package splitter partitions a PDF held in memory into page-groups for
// transcription. Group planning is pure range arithmetic over the page
// count; extraction of each group into its own PDF is done with pdfcpu.
package splitter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Range is an inclusive, 1-indexed page range.
type Range struct {
	Start int
	End   int
}

// PageGroup is one transcription unit: the bytes of a standalone PDF holding
// the pages Start..End of the source document. Groups are transient and are
// never persisted.
type PageGroup struct {
	Name  string
	Data  []byte
	Start int
	End   int
}

// Policy decides how a document of a given length is partitioned.
// Plan must return ranges that are pairwise disjoint, in ascending order,
// and clipped to 1..totalPages.
type Policy interface {
	Plan(totalPages int) []Range
}

// SinglePage puts every page in its own group.
type SinglePage struct{}

func (SinglePage) Plan(totalPages int) []Range {
	ranges := make([]Range, 0, totalPages)
	for p := 1; p <= totalPages; p++ {
		ranges = append(ranges, Range{Start: p, End: p})
	}
	return ranges
}

// CoverThenPairs isolates page 1 as the cover, then groups two pages at a
// time starting at page 2. The trailing group holds a single page when the
// remaining count is odd.
type CoverThenPairs struct{}

func (CoverThenPairs) Plan(totalPages int) []Range {
	if totalPages < 1 {
		return nil
	}
	ranges := []Range{{Start: 1, End: 1}}
	for p := 2; p <= totalPages; p += 2 {
		end := p + 1
		if end > totalPages {
			end = totalPages
		}
		ranges = append(ranges, Range{Start: p, End: end})
	}
	return ranges
}

// ExplicitPages turns each requested page into a singleton group. Pages
// outside 1..totalPages are silently dropped; duplicates collapse; output
// is ascending regardless of input order. The recovery pipeline feeds it
// the missing-page set.
type ExplicitPages struct {
	Pages []int
}

func (p ExplicitPages) Plan(totalPages int) []Range {
	seen := make(map[int]bool, len(p.Pages))
	pages := make([]int, 0, len(p.Pages))
	for _, page := range p.Pages {
		if page < 1 || page > totalPages || seen[page] {
			continue
		}
		seen[page] = true
		pages = append(pages, page)
	}
	sort.Ints(pages)

	ranges := make([]Range, 0, len(pages))
	for _, page := range pages {
		ranges = append(ranges, Range{Start: page, End: page})
	}
	return ranges
}

// ExplicitRanges turns each caller-supplied range into one group, preserving
// caller order. Ranges starting beyond the document are dropped; ends are
// clipped to the page count. The workbook pipeline uses it to isolate one
// problem at a time.
type ExplicitRanges struct {
	Ranges []Range
}

func (p ExplicitRanges) Plan(totalPages int) []Range {
	ranges := make([]Range, 0, len(p.Ranges))
	for _, r := range p.Ranges {
		if r.Start < 1 || r.Start > totalPages || r.End < r.Start {
			continue
		}
		end := r.End
		if end > totalPages {
			end = totalPages
		}
		ranges = append(ranges, Range{Start: r.Start, End: end})
	}
	return ranges
}

// GroupName embeds the 1-indexed page or range for downstream traceability.
// The cover group of CoverThenPairs keeps its historical name.
func GroupName(r Range, cover bool) string {
	if cover {
		return "cover"
	}
	if r.Start == r.End {
		return fmt.Sprintf("page_%d", r.Start)
	}
	return fmt.Sprintf("pages_%d-%d", r.Start, r.End)
}

// Split partitions the document according to the policy and returns one
// standalone PDF per planned range.
func Split(data []byte, policy Policy) ([]PageGroup, error) {
	conf := pdfConfiguration()

	totalPages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	_, coverFirst := policy.(CoverThenPairs)

	ranges := policy.Plan(totalPages)
	groups := make([]PageGroup, 0, len(ranges))
	for i, r := range ranges {
		selection := fmt.Sprintf("%d-%d", r.Start, r.End)
		var buf bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &buf, []string{selection}, conf); err != nil {
			return nil, fmt.Errorf("failed to extract pages %s: %w", selection, err)
		}
		groups = append(groups, PageGroup{
			Name:  GroupName(r, coverFirst && i == 0),
			Data:  buf.Bytes(),
			Start: r.Start,
			End:   r.End,
		})
	}
	return groups, nil
}

// pdfConfiguration returns the relaxed-validation configuration used for all
// pdfcpu operations. Scanned source documents routinely fail strict checks.
func pdfConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
