package usecase

import (
	"sort"

	"github.com/comparewise/backend/internal/domain"
)

// CompareProductDetails returns one row for every detail name present in both
// records. A nil record or a missing details list counts as empty. When a name
// repeats within a record the last value wins. Rows come out in no particular
// order; use SortRows before display.
func CompareProductDetails(p1, p2 *domain.ProductRecord) []domain.ComparisonRow {
	details1 := detailMap(p1)
	details2 := detailMap(p2)

	rows := make([]domain.ComparisonRow, 0)
	for name, v1 := range details1 {
		v2, ok := details2[name]
		if !ok {
			continue
		}
		rows = append(rows, domain.ComparisonRow{
			DetailName: name,
			Product1:   v1,
			Product2:   v2,
		})
	}
	return rows
}

func detailMap(p *domain.ProductRecord) map[string]string {
	m := make(map[string]string)
	if p == nil {
		return m
	}
	for _, d := range p.Details {
		m[d.Name] = d.Text()
	}
	return m
}

// SortRows orders rows by detail name in place and returns them
func SortRows(rows []domain.ComparisonRow) []domain.ComparisonRow {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].DetailName < rows[j].DetailName
	})
	return rows
}
