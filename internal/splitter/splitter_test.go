package splitter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePDF builds a minimal but valid PDF with the given number of empty
// pages, computing the xref table offsets as it writes.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, pages+3)

	buf.WriteString("%PDF-1.4\n")

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		writeObj(3+i, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", pages+3)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= pages+2; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", pages+3, xrefOffset)

	return buf.Bytes()
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), pdfConfiguration())
	require.NoError(t, err)
	return n
}

func TestMakePDFFixture(t *testing.T) {
	assert.Equal(t, 1, pageCount(t, makePDF(t, 1)))
	assert.Equal(t, 5, pageCount(t, makePDF(t, 5)))
}

func TestSinglePagePlan(t *testing.T) {
	got := SinglePage{}.Plan(3)
	want := []Range{{1, 1}, {2, 2}, {3, 3}}
	assert.Equal(t, want, got)

	assert.Empty(t, SinglePage{}.Plan(0))
}

func TestCoverThenPairsPlan(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		want       []Range
	}{
		{"even total leaves odd trailing group", 6, []Range{{1, 1}, {2, 3}, {4, 5}, {6, 6}}},
		{"odd total pairs up exactly", 5, []Range{{1, 1}, {2, 3}, {4, 5}}},
		{"single page is just the cover", 1, []Range{{1, 1}}},
		{"two pages", 2, []Range{{1, 1}, {2, 2}}},
		{"empty document", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoverThenPairs{}.Plan(tt.totalPages))
		})
	}
}

func TestExplicitPagesPlan(t *testing.T) {
	p := ExplicitPages{Pages: []int{5, 2, 2, 9, 0, -1}}
	got := p.Plan(5)
	assert.Equal(t, []Range{{2, 2}, {5, 5}}, got)
}

func TestExplicitRangesPlan(t *testing.T) {
	p := ExplicitRanges{Ranges: []Range{
		{Start: 1, End: 3},
		{Start: 4, End: 9},  // clipped to the document
		{Start: 8, End: 10}, // starts beyond the document
		{Start: 3, End: 2},  // inverted
	}}
	got := p.Plan(6)
	assert.Equal(t, []Range{{1, 3}, {4, 6}}, got)
}

// Splitting must be a partition: ranges pairwise disjoint, in bounds, and
// for whole-document policies their union covers every page exactly once.
func TestPlansArePartitions(t *testing.T) {
	policies := map[string]Policy{
		"single page":      SinglePage{},
		"cover then pairs": CoverThenPairs{},
	}
	for name, policy := range policies {
		t.Run(name, func(t *testing.T) {
			for totalPages := 1; totalPages <= 12; totalPages++ {
				covered := make(map[int]int)
				prevEnd := 0
				for _, r := range policy.Plan(totalPages) {
					require.LessOrEqual(t, r.Start, r.End)
					require.GreaterOrEqual(t, r.Start, 1)
					require.LessOrEqual(t, r.End, totalPages)
					require.Greater(t, r.Start, prevEnd, "ranges must ascend without overlap")
					prevEnd = r.End
					for p := r.Start; p <= r.End; p++ {
						covered[p]++
					}
				}
				for p := 1; p <= totalPages; p++ {
					require.Equal(t, 1, covered[p], "page %d of %d covered exactly once", p, totalPages)
				}
			}
		})
	}
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "cover", GroupName(Range{1, 1}, true))
	assert.Equal(t, "page_4", GroupName(Range{4, 4}, false))
	assert.Equal(t, "pages_2-3", GroupName(Range{2, 3}, false))
}

func TestSplitSinglePage(t *testing.T) {
	groups, err := Split(makePDF(t, 3), SinglePage{})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	for i, g := range groups {
		assert.Equal(t, i+1, g.Start)
		assert.Equal(t, i+1, g.End)
		assert.Equal(t, fmt.Sprintf("page_%d", i+1), g.Name)
		assert.Equal(t, 1, pageCount(t, g.Data))
	}
}

func TestSplitCoverThenPairs(t *testing.T) {
	groups, err := Split(makePDF(t, 5), CoverThenPairs{})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "cover", groups[0].Name)
	assert.Equal(t, 1, pageCount(t, groups[0].Data))

	assert.Equal(t, "pages_2-3", groups[1].Name)
	assert.Equal(t, 2, pageCount(t, groups[1].Data))

	assert.Equal(t, "pages_4-5", groups[2].Name)
	assert.Equal(t, 2, pageCount(t, groups[2].Data))
}

func TestSplitDropsOutOfRangePages(t *testing.T) {
	groups, err := Split(makePDF(t, 3), ExplicitPages{Pages: []int{2, 9}})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "page_2", groups[0].Name)
	assert.Equal(t, 2, groups[0].Start)
}

func TestSplitRejectsGarbage(t *testing.T) {
	_, err := Split([]byte("not a pdf"), SinglePage{})
	require.Error(t, err)
}
