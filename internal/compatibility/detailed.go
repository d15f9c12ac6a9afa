package compatibility

// RawSubScores is the sub-score record returned by the scoring service. Field names
// depend on the offer kind; values are loosely typed as decoded from JSON.
type RawSubScores map[string]interface{}

// SubScores is a canonical, formatted sub-score record keyed by display key.
type SubScores map[string]float64

// Canonical sub-score keys.
const (
	KeySkills     = "skills"
	KeyExperience = "experience"
	KeyLocation   = "location"
	KeySalary     = "salary"
	KeyCulture    = "culture"
	KeyEducation  = "education"

	KeyExpertise    = "expertise"
	KeyPortfolio    = "portfolio"
	KeyAvailability = "availability"
	KeyRates        = "rates"
	KeyReferences   = "references"

	KeyBusinessPlan     = "businessPlan"
	KeyFinancialProfile = "financialProfile"
	KeyGuarantees       = "guarantees"
	KeyProfitability    = "profitability"
	KeyRisk             = "risk"
)

type fieldMapping struct {
	raw       string
	canonical string
}

var jobFields = []fieldMapping{
	{"skill_match", KeySkills},
	{"experience_match", KeyExperience},
	{"location_match", KeyLocation},
	{"salary_match", KeySalary},
	{"culture_match", KeyCulture},
	{"education_match", KeyEducation},
}

var consultationFields = []fieldMapping{
	{"expertise_match", KeyExpertise},
	{"portfolio_match", KeyPortfolio},
	{"availability_match", KeyAvailability},
	{"rates_match", KeyRates},
	{"references_match", KeyReferences},
}

var fundingFields = []fieldMapping{
	{"business_plan_match", KeyBusinessPlan},
	{"financial_profile_match", KeyFinancialProfile},
	{"guarantees_match", KeyGuarantees},
	{"profitability_match", KeyProfitability},
	{"risk_assessment", KeyRisk},
}

// detailedFields returns the rename table for a kind, or nil for unknown kinds.
func detailedFields(kind OfferKind) []fieldMapping {
	switch kind {
	case OfferKindJob:
		return jobFields
	case OfferKindConsultation:
		return consultationFields
	case OfferKindFunding:
		return fundingFields
	default:
		return nil
	}
}

// MapDetailedScores renames raw sub-score fields to canonical keys for kind and
// formats every value. Every canonical key of a known kind is present in the result:
// a missing raw field is filled with 0 here, so nothing downstream has to treat
// absence specially. Unknown kinds keep their raw keys.
func MapDetailedScores(kind OfferKind, raw RawSubScores) SubScores {
	fields := detailedFields(kind)
	if fields == nil {
		out := make(SubScores, len(raw))
		for key, value := range raw {
			out[key] = FormatValue(value)
		}
		return out
	}

	out := make(SubScores, len(fields))
	for _, f := range fields {
		out[f.canonical] = FormatValue(raw[f.raw])
	}
	return out
}

// DetailedKeys lists the canonical sub-score keys of kind in display order.
func DetailedKeys(kind OfferKind) []string {
	fields := detailedFields(kind)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.canonical
	}
	return keys
}
