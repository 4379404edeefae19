package domain

import (
	"encoding/json"
	"fmt"
)

// Decision es la clasificación de un Aggregate contra los Thresholds.
// El orden numérico es el orden canónico de presentación:
// Scale primero, luego Optimize, luego Kill.
type Decision int

const (
	DecisionScale Decision = iota
	DecisionOptimize
	DecisionKill
	// DecisionLearn solo lo emite StatusForGated para grupos bajo volumen.
	DecisionLearn
)

// String devuelve el label de la decisión.
func (d Decision) String() string {
	switch d {
	case DecisionScale:
		return "Scale"
	case DecisionOptimize:
		return "Optimize"
	case DecisionKill:
		return "Kill"
	case DecisionLearn:
		return "Learn"
	}
	return "Unknown"
}

// Icon devuelve el marcador corto para salida de consola.
func (d Decision) Icon() string {
	switch d {
	case DecisionScale:
		return "[S]"
	case DecisionOptimize:
		return "[O]"
	case DecisionKill:
		return "[K]"
	case DecisionLearn:
		return "[L]"
	}
	return "[?]"
}

// MarshalJSON serializa la decisión como su label.
func (d Decision) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON acepta el label serializado por MarshalJSON.
func (d *Decision) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseDecision(s)
	return nil
}

// ParseDecision convierte un label persistido de vuelta a Decision.
func ParseDecision(s string) Decision {
	switch s {
	case "Scale":
		return DecisionScale
	case "Kill":
		return DecisionKill
	case "Learn":
		return DecisionLearn
	}
	return DecisionOptimize
}

// Thresholds es la política de decisión. La provee el caller por evaluación;
// el core no la persiste. CpaKill y CpaGood son opcionales (nil = sin
// breakpoint de CPA).
type Thresholds struct {
	MinSpend  float64  `json:"min_spend" yaml:"min_spend"`
	MinClicks int64    `json:"min_clicks" yaml:"min_clicks"`
	RoasKill  float64  `json:"roas_kill" yaml:"roas_kill"`
	RoasScale float64  `json:"roas_scale" yaml:"roas_scale"`
	CpaKill   *float64 `json:"cpa_kill,omitempty" yaml:"cpa_kill"`
	CpaGood   *float64 `json:"cpa_good,omitempty" yaml:"cpa_good"`
}

// StatusFor clasifica un Aggregate en Kill, Optimize o Scale.
//
// Orden de evaluación, incluidos los tie-breaks:
//  1. meetsVolume = spend >= MinSpend && clicks >= MinClicks
//  2. meetsVolume y (ROAS < RoasKill o CPA > CpaKill) → Kill
//  3. ROAS >= RoasScale o CPA <= CpaGood → Scale
//  4. default → Optimize
//
// La regla Scale NO exige el volume gate: un grupo chico pero muy rentable
// califica Scale igual. Esa asimetría (Kill gated, Scale no) es el
// comportamiento de referencia y se preserva a propósito.
func StatusFor(a Aggregate, t Thresholds) Decision {
	meetsVolume := a.Spend >= t.MinSpend && a.Clicks >= t.MinClicks

	if meetsVolume && ((a.ROAS != nil && *a.ROAS < t.RoasKill) ||
		(t.CpaKill != nil && a.CPA != nil && *a.CPA > *t.CpaKill)) {
		return DecisionKill
	}
	if (a.ROAS != nil && *a.ROAS >= t.RoasScale) ||
		(t.CpaGood != nil && a.CPA != nil && *a.CPA <= *t.CpaGood) {
		return DecisionScale
	}
	return DecisionOptimize
}

// StatusForGated es la variante con gate total: grupos bajo volumen devuelven
// Learn en vez de clasificarse. Es la evolución observada en la vista de
// badges del dashboard; StatusFor sigue siendo la clasificación canónica.
func StatusForGated(a Aggregate, t Thresholds) Decision {
	if a.Spend < t.MinSpend || a.Clicks < t.MinClicks {
		return DecisionLearn
	}
	return StatusFor(a, t)
}
