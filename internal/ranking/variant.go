package ranking

import (
	"unicode/utf16"

	"github.com/feedhub/feedrank/internal/entities"
)

// VariantFor assigns user to a stable A/B bucket: sum of UTF-16 code units of userID modulo 3.
func VariantFor(userID string) entities.Variant {
	var h int
	for _, c := range utf16.Encode([]rune(userID)) {
		h += int(c)
	}

	switch h % 3 {
	case 1:
		return entities.EngagementVariant
	case 2:
		return entities.RecencyVariant
	default:
		return entities.DefaultVariant
	}
}

// WeightsFor returns weights profile of the variant.
func WeightsFor(v entities.Variant) Weights {
	switch v {
	case entities.EngagementVariant:
		return EngagementWeights
	case entities.RecencyVariant:
		return RecencyWeights
	default:
		return DefaultWeights
	}
}
