package usecase

import (
	"regexp"

	"github.com/comparewise/backend/internal/domain"
)

// Identifier patterns, tried in order
var (
	dpPathPattern      = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)
	productPathPattern = regexp.MustCompile(`product/([A-Z0-9]{10})`)
)

// ExtractProductID returns the 10-character product identifier that follows
// "/dp/" or, failing that, "product/" in rawURL.
func ExtractProductID(rawURL string) (domain.ProductID, bool) {
	for _, p := range []*regexp.Regexp{dpPathPattern, productPathPattern} {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return domain.ProductID(m[1]), true
		}
	}
	return "", false
}
