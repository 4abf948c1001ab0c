package table

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/mohitkumar/checkin/model"
	"github.com/stretchr/testify/require"
)

func reports(n int) []model.Report {
	out := make([]model.Report, 0, n)
	for i := 1; i <= n; i++ {
		status := "complete"
		if i%3 == 0 {
			status = "Escalated"
		}
		out = append(out, model.Report{Id: fmt.Sprintf("r%d", i), Manager: fmt.Sprintf("Manager %d", i%2), Status: status, Summary: fmt.Sprintf("summary %d", i)})
	}
	return out
}

func ids(rs []model.Report) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Id)
	}
	return out
}

func TestApply(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"defaults":              testDefaults,
		"pagination":            testPagination,
		"page is clamped":       testClamp,
		"search":                testSearch,
		"filter":                testFilter,
		"filter all is ignored": testFilterAll,
		"empty input":           testEmpty,
	} {
		t.Run(scenario, fn)
	}
}

func testDefaults(t *testing.T) {
	p := Apply(reports(25), Reports, Query{Page: 1})
	require.Equal(t, 20, p.PageSize)
	require.Len(t, p.Items, 20)
	require.Equal(t, 25, p.Total)
	require.Equal(t, 2, p.TotalPages)
}

func testPagination(t *testing.T) {
	p := Apply(reports(12), Reports, Query{Page: 3, PageSize: 5})
	require.Equal(t, []string{"r11", "r12"}, ids(p.Items))
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 3, p.Page)
}

func testClamp(t *testing.T) {
	p := Apply(reports(12), Reports, Query{Page: 9, PageSize: 5})
	require.Equal(t, 3, p.Page)
	require.Equal(t, []string{"r11", "r12"}, ids(p.Items))

	p = Apply(reports(12), Reports, Query{Page: -2, PageSize: 5})
	require.Equal(t, 1, p.Page)
	require.Len(t, p.Items, 5)
}

func testSearch(t *testing.T) {
	p := Apply(reports(12), Reports, Query{Search: "SUMMARY 1", Page: 1, PageSize: 10})
	require.Equal(t, []string{"r1", "r10", "r11", "r12"}, ids(p.Items))
}

func testFilter(t *testing.T) {
	p := Apply(reports(9), Reports, Query{Filters: map[string]string{"status": "escalated"}, Page: 1, PageSize: 10})
	require.Equal(t, []string{"r3", "r6", "r9"}, ids(p.Items))

	p = Apply(reports(9), Reports, Query{Filters: map[string]string{"status": "escalated", "manager": "Manager 1"}, Page: 1, PageSize: 10})
	require.Equal(t, []string{"r3", "r9"}, ids(p.Items))
}

func testFilterAll(t *testing.T) {
	p := Apply(reports(9), Reports, Query{Filters: map[string]string{"status": ALL}, Page: 1, PageSize: 10})
	require.Len(t, p.Items, 9)
}

func testEmpty(t *testing.T) {
	p := Apply[model.Report](nil, Reports, Query{Page: 4, PageSize: 10})
	require.Empty(t, p.Items)
	require.NotNil(t, p.Items)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 0, p.TotalPages)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{"search": {"late"}, "page": {"2"}, "pageSize": {"50"}, "status": {"complete"}, "other": {"x"}}, Reports.Filters)
	require.NoError(t, err)
	require.Equal(t, Query{Search: "late", Page: 2, PageSize: 50, Filters: map[string]string{"status": "complete"}}, q)

	q, err = ParseQuery(url.Values{"page": {"abc"}}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, q.Page)
	require.Equal(t, DEFAULT_PAGE_SIZE, q.PageSize)

	_, err = ParseQuery(url.Values{"pageSize": {"7"}}, nil)
	require.Error(t, err)
}
