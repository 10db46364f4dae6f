// Package intent classifies a chat message into one of the planning intents
// the responder knows how to handle. Classification is deterministic: code
// extraction by pattern plus keyword classes, with Spanish variants kept from
// the pilot deployment.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Type enumerates the supported intents.
type Type string

const (
	TypeSKUMissing        Type = "sku_missing"
	TypeImpactedBySKU     Type = "impacted_by_sku"
	TypeComponentMissing  Type = "component_missing"
	TypeComponentStockout Type = "component_stockout"
	TypeRouteBlock        Type = "route_block"
	TypeCoverage          Type = "coverage"
	TypeFallback          Type = "fallback"
)

// Intent is one parsed message.
type Intent struct {
	Type    Type
	SKU     string
	Code    string
	Origin  string
	Dest    string
	Horizon int
	Raw     string
}

const (
	minHorizonDays = 1
	maxHorizonDays = 60
	defaultHorizon = 7
)

var (
	skuPattern   = regexp.MustCompile(`(product_\d+)`)
	plantPattern = regexp.MustCompile(`(plant_\d+)`)
	digits       = regexp.MustCompile(`(\d+)\s*(day|d[ií]a|dias|d[ií]as)?`)

	kwMissing   = regexp.MustCompile(`missing|out of stock|delay|late|shortage|not working|falta|agotad|retras|sin stock`)
	kwComponent = regexp.MustCompile(`component|componente`)
	kwRoute     = regexp.MustCompile(`route|ruta`)
	kwBlocked   = regexp.MustCompile(`blocked|bloquead|closed|cerrad`)
	kwCoverage  = regexp.MustCompile(`coverage|stockout[s]?|predict|horizon|riesgo|alerta`)
	kwStockout  = regexp.MustCompile(`stockout|simulate|simular|falt`)
	kwAffected  = regexp.MustCompile(`who is affected|clientes|affected`)
)

// Parse classifies one message. It never fails; unmatched text becomes the
// fallback intent.
func Parse(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	out := Intent{Raw: text, Horizon: defaultHorizon}

	skus := skuPattern.FindAllString(t, -1)
	plants := plantPattern.FindAllString(t, -1)

	switch {
	case kwRoute.MatchString(t) && kwBlocked.MatchString(t):
		out.Type = TypeRouteBlock
		if len(plants) >= 1 {
			out.Origin = plants[0]
		}
		if len(plants) >= 2 {
			out.Dest = plants[1]
		}
		if len(skus) >= 1 {
			out.SKU = skus[0]
		}

	case kwComponent.MatchString(t) && kwMissing.MatchString(t) && len(skus) >= 1:
		out.Type = TypeComponentMissing
		out.Code = skus[0]

	case kwComponent.MatchString(t) && kwStockout.MatchString(t) && len(skus) >= 1:
		out.Type = TypeComponentStockout
		out.Code = skus[0]

	case kwMissing.MatchString(t) && len(skus) >= 1:
		out.Type = TypeSKUMissing
		out.SKU = skus[0]

	case kwAffected.MatchString(t) && len(skus) >= 1:
		out.Type = TypeImpactedBySKU
		out.SKU = skus[0]

	case kwCoverage.MatchString(t):
		out.Type = TypeCoverage
		out.Horizon = parseHorizon(t)

	default:
		out.Type = TypeFallback
	}
	return out
}

func parseHorizon(t string) int {
	m := digits.FindStringSubmatch(t)
	if m == nil {
		return defaultHorizon
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultHorizon
	}
	if n < minHorizonDays {
		return minHorizonDays
	}
	if n > maxHorizonDays {
		return maxHorizonDays
	}
	return n
}
