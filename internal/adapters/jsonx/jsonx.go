// Package jsonx define tipos escalares tolerantes para payloads de vendors.
//
// Las APIs de ads devuelven métricas como number, string numérico o null según
// el endpoint (y a veces según el día). Estos tipos absorben ese drift: todo
// input no numérico decodifica a 0 en vez de fallar el unmarshal — una métrica
// malformada nunca tira una Row completa ni propaga NaN.
package jsonx

import (
	"bytes"
	"strconv"
)

// Float es un float64 que tolera number, string y null.
type Float float64

// UnmarshalJSON implementa json.Unmarshaler. Nunca devuelve error: input
// no numérico → 0.
func (f *Float) UnmarshalJSON(data []byte) error {
	*f = Float(looseFloat(data))
	return nil
}

// Value devuelve el float64 subyacente.
func (f Float) Value() float64 { return float64(f) }

// Int es un int64 que tolera number, string y null. Valores fraccionales
// se truncan hacia cero.
type Int int64

// UnmarshalJSON implementa json.Unmarshaler. Nunca devuelve error.
func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int(looseFloat(data))
	return nil
}

// Value devuelve el int64 subyacente.
func (i Int) Value() int64 { return int64(i) }

// NonNegative devuelve el int64 con piso en 0.
func (i Int) NonNegative() int64 {
	if i < 0 {
		return 0
	}
	return int64(i)
}

func looseFloat(data []byte) float64 {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
