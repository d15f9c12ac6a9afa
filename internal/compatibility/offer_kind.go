package compatibility

import (
	"strings"

	apperrors "compatibility-workers/internal/common/errors"
)

// OfferKind is the canonical category of an opportunity. It drives which sub-score
// vocabulary and phrase tables apply.
type OfferKind string

const (
	OfferKindJob          OfferKind = "JOB"
	OfferKindConsultation OfferKind = "CONSULTATION"
	OfferKindFunding      OfferKind = "FUNDING"
)

// OfferKinds lists the known kinds in display order.
var OfferKinds = []OfferKind{OfferKindJob, OfferKindConsultation, OfferKindFunding}

// offerTypeAliases maps lower-cased user-facing aliases to their kind.
// Scholarships have no dedicated kind and are scored as funding.
var offerTypeAliases = map[string]OfferKind{
	"emploi":       OfferKindJob,
	"job":          OfferKindJob,
	"consultation": OfferKindConsultation,
	"financement":  OfferKindFunding,
	"funding":      OfferKindFunding,
	"bourse":       OfferKindFunding,
	"scholarship":  OfferKindFunding,
}

// NormalizeOfferType maps a user-facing alias onto an OfferKind, ignoring case and
// surrounding whitespace. Unknown or empty aliases yield an INVALID_OFFER_TYPE error
// carrying the original alias.
func NormalizeOfferType(alias string) (OfferKind, error) {
	kind, ok := offerTypeAliases[strings.ToLower(strings.TrimSpace(alias))]
	if !ok {
		return "", apperrors.NewInvalidOfferTypeError(alias)
	}
	return kind, nil
}

func (k OfferKind) String() string {
	return string(k)
}
