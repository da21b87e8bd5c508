package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/divesh330/timevault/internal/errs"
)

// serialFormat is the brand-specific serial number rule.
type serialFormat struct {
	pattern *regexp.Regexp
	hint    string
}

// Brands are matched case-insensitively against this table.
var serialFormats = map[string]serialFormat{
	"rolex": {regexp.MustCompile(`^[A-Za-z0-9]{8}$`), "8 alphanumeric characters"},
	"omega": {regexp.MustCompile(`^[0-9]{7,8}$`), "7-8 digits"},
	"seiko": {regexp.MustCompile(`^[0-9]{6,7}$`), "6-7 digits"},
	"casio": {regexp.MustCompile(`^[A-Za-z0-9]{6,10}$`), "6-10 alphanumeric characters"},
}

// SupportedBrands returns the brands with a known serial format, sorted.
func SupportedBrands() []string {
	brands := make([]string, 0, len(serialFormats))
	for brand := range serialFormats {
		brands = append(brands, brand)
	}
	sort.Strings(brands)
	return brands
}

// ValidateSerialFormat checks a serial number against the brand's format
// rule. An unsupported brand or a mismatching serial yields an
// InvalidSerialFormat error naming the brand and the expected format.
func ValidateSerialFormat(brand, serial string) error {
	format, ok := serialFormats[strings.ToLower(brand)]
	if !ok {
		return errs.New(errs.KindInvalidSerialFormat,
			"unsupported brand %q: supported brands are %s", brand, strings.Join(SupportedBrands(), ", "))
	}
	if !format.pattern.MatchString(serial) {
		return errs.New(errs.KindInvalidSerialFormat,
			"invalid serial number for brand %q: expected %s", brand, format.hint)
	}
	return nil
}
