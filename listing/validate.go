package listing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ezoic/detailviews/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// guardedFields are filled in by cleaning, so they are skipped when a freshly
// parsed record is validated.
var guardedFields = []string{"SearchViews", "DetailViews", "CTR"}

// ValidateSource checks the fields a parsed record must satisfy before any
// cleaning: known product tier, non-empty identifiers, non-negative price and
// non-negative view counts where present.
func ValidateSource(r *Record) error {
	if err := recordValidator().StructExcept(r, guardedFields...); err != nil {
		return describe(err)
	}
	for _, v := range []*int64{r.SearchViews, r.DetailViews} {
		if v != nil && *v < 0 {
			return errors.Newf("view count must be non-negative, got %d", *v)
		}
	}
	return nil
}

// Validate checks a cleaned record: every source rule plus presence of
// search_views, detail_views and ctr.
func Validate(r *Record) error {
	if err := recordValidator().Struct(r); err != nil {
		return describe(err)
	}
	return nil
}

// describe flattens validator errors into one readable error.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.Newf("validation: %s", strings.Join(parts, "; "))
}
