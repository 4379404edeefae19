package meta

// Aliases de action_type de la Graph API. Meta reporta la misma conversión
// bajo el tipo básico y el "omni" (cross-device); se suman ambos.
var (
	leadActions     = []string{"lead"}
	checkoutActions = []string{"initiate_checkout", "omni_initiated_checkout"}
	purchaseActions = []string{"purchase", "omni_purchase"}
)

// pickAction suma los conteos de los action_type indicados.
func pickAction(actions []actionValue, types []string) int64 {
	var total int64
	for _, a := range actions {
		for _, t := range types {
			if a.ActionType == t {
				total += int64(a.Value.Value())
			}
		}
	}
	return total
}

// pickActionValue suma los importes (action_values) de los action_type dados.
func pickActionValue(values []actionValue, types []string) float64 {
	var total float64
	for _, a := range values {
		for _, t := range types {
			if a.ActionType == t {
				total += a.Value.Value()
			}
		}
	}
	return total
}
