package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is an offset window over a newest-first listing.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage reads offset and limit from the query string. Missing values fall
// back to offset 0 and DefaultPageLimit; limit is capped at MaxPageLimit.
func ParsePage(c *gin.Context) (Page, error) {
	page := Page{Limit: DefaultPageLimit}

	if raw, ok := c.GetQuery("offset"); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return Page{}, apperrors.Wrap(apperrors.ErrInvalidInput, "offset must be a non-negative integer")
		}
		page.Offset = offset
	}

	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPageLimit {
			return Page{}, apperrors.Wrap(
				apperrors.ErrInvalidInput,
				"limit must be an integer between 1 and "+strconv.Itoa(MaxPageLimit),
			)
		}
		page.Limit = limit
	}

	return page, nil
}

// Next returns the offset of the following page, or nil when a short page
// of returned items shows the listing is exhausted.
func (p Page) Next(returned int) *int {
	if returned < p.Limit {
		return nil
	}
	next := p.Offset + p.Limit
	return &next
}
