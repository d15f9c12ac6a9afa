package compatibility

import (
	"fmt"
	"sort"
)

const (
	strengthThreshold       = 80.0
	weaknessThreshold       = 60.0
	recommendationThreshold = 70.0
)

// Fallback and closing statements.
const (
	FallbackStrength = "Profil globalement compatible"
	FallbackWeakness = "Aucune faiblesse majeure identifiée"

	ClosingHighlightStrengths = "Mettre en avant vos points forts dans la candidature"
	ClosingPrepareExamples    = "Préparer des exemples concrets de vos réalisations"
)

// Assessment is the human-readable reading of a sub-score record.
type Assessment struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

type phrases struct {
	key            string
	strength       string
	weakness       string
	recommendation string
}

// Education is mapped for display on jobs but is not assessed.
var jobPhrases = []phrases{
	{KeySkills,
		"Excellent correspondance des compétences",
		"Compétences techniques à renforcer pour ce poste",
		"Développer les compétences techniques demandées"},
	{KeyExperience,
		"Expérience professionnelle très pertinente",
		"Expérience insuffisante pour le poste",
		"Acquérir plus d'expérience dans le domaine"},
	{KeyLocation,
		"Localisation parfaitement adaptée",
		"Localisation éloignée du lieu de travail",
		"Envisager une mobilité géographique ou le télétravail"},
	{KeySalary,
		"Prétentions salariales alignées avec l'offre",
		"Écart important sur les prétentions salariales",
		"Revoir vos prétentions salariales"},
	{KeyCulture,
		"Culture d'entreprise compatible",
		"Adéquation culturelle limitée",
		"Se renseigner davantage sur la culture de l'entreprise"},
}

var consultationPhrases = []phrases{
	{KeyExpertise,
		"Expertise très pertinente pour la mission",
		"Expertise insuffisante pour la mission",
		"Approfondir votre expertise dans le domaine de la mission"},
	{KeyPortfolio,
		"Portfolio solide et pertinent",
		"Portfolio peu fourni pour ce type de mission",
		"Enrichir votre portfolio avec des projets similaires"},
	{KeyAvailability,
		"Disponibilité parfaitement adaptée",
		"Disponibilité limitée par rapport aux besoins",
		"Clarifier vos disponibilités pour la mission"},
	{KeyRates,
		"Tarifs alignés avec le budget",
		"Tarifs éloignés du budget prévu",
		"Ajuster vos tarifs au budget de la mission"},
	{KeyReferences,
		"Références clients convaincantes",
		"Références insuffisantes",
		"Obtenir davantage de recommandations clients"},
}

var fundingPhrases = []phrases{
	{KeyBusinessPlan,
		"Business plan solide et cohérent",
		"Business plan à consolider",
		"Renforcer votre business plan"},
	{KeyFinancialProfile,
		"Profil financier adapté au financement",
		"Profil financier fragile",
		"Améliorer la solidité de votre profil financier"},
	{KeyGuarantees,
		"Garanties suffisantes",
		"Garanties insuffisantes",
		"Apporter des garanties complémentaires"},
	{KeyProfitability,
		"Rentabilité prévisionnelle attractive",
		"Rentabilité prévisionnelle incertaine",
		"Détailler vos prévisions de rentabilité"},
	{KeyRisk,
		"Niveau de risque maîtrisé",
		"Niveau de risque élevé",
		"Présenter un plan de maîtrise des risques"},
}

func assessmentPhrases(kind OfferKind) []phrases {
	switch kind {
	case OfferKindJob:
		return jobPhrases
	case OfferKindConsultation:
		return consultationPhrases
	case OfferKindFunding:
		return fundingPhrases
	default:
		return nil
	}
}

// GenerateAssessment derives strengths (>= 80), weaknesses (< 60) and recommendations
// (< 70) from canonical sub-scores. Statements follow the kind's key order, not score
// order. Strengths and weaknesses fall back to a single generic statement when empty;
// recommendations always end with the two closing statements.
//
// Unknown kinds get one generic statement per key in sorted key order and no
// per-key recommendations.
func GenerateAssessment(kind OfferKind, scores SubScores) Assessment {
	a := Assessment{
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{},
	}

	if table := assessmentPhrases(kind); table != nil {
		for _, p := range table {
			v := scores[p.key]
			if v >= strengthThreshold {
				a.Strengths = append(a.Strengths, p.strength)
			}
			if v < weaknessThreshold {
				a.Weaknesses = append(a.Weaknesses, p.weakness)
			}
			if v < recommendationThreshold {
				a.Recommendations = append(a.Recommendations, p.recommendation)
			}
		}
	} else {
		keys := make([]string, 0, len(scores))
		for key := range scores {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			v := scores[key]
			if v >= strengthThreshold {
				a.Strengths = append(a.Strengths, fmt.Sprintf("high score on %s", key))
			}
			if v < weaknessThreshold {
				a.Weaknesses = append(a.Weaknesses, fmt.Sprintf("low score on %s", key))
			}
		}
	}

	if len(a.Strengths) == 0 {
		a.Strengths = append(a.Strengths, FallbackStrength)
	}
	if len(a.Weaknesses) == 0 {
		a.Weaknesses = append(a.Weaknesses, FallbackWeakness)
	}
	a.Recommendations = append(a.Recommendations, ClosingHighlightStrengths, ClosingPrepareExamples)

	return a
}
