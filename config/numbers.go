package config

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// checkNumberRange is a decode hook rejecting document numbers that do not
// fit the target type: out of range integers and floats with a fractional
// part going into integer fields. mapstructure would otherwise wrap or
// truncate them.
func checkNumberRange(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if !isIntKind(to.Kind()) && !isUintKind(to.Kind()) && to.Kind() != reflect.Float32 {
		return data, nil
	}

	value := reflect.ValueOf(data)

	if number, ok := data.(json.Number); ok {
		integer, err := number.Int64()
		if err == nil {
			value = reflect.ValueOf(integer)
		} else if float, err := number.Float64(); err == nil {
			value = reflect.ValueOf(float)
		} else {
			return data, nil
		}
	}

	var fits bool

	switch kind := value.Kind(); {
	case isIntKind(kind):
		fits = intFits(value.Int(), to)
	case isUintKind(kind):
		fits = uintFits(value.Uint(), to)
	case kind == reflect.Float32 || kind == reflect.Float64:
		float := value.Float()
		if to.Kind() != reflect.Float32 && float != math.Trunc(float) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrNumberRange, data)
		}

		fits = floatFits(float, to)
	default:
		return data, nil
	}

	if !fits {
		return nil, fmt.Errorf("%w: %v overflows %s", ErrNumberRange, data, to)
	}

	return data, nil
}

func intFits(n int64, to reflect.Type) bool {
	switch {
	case isIntKind(to.Kind()):
		return !reflect.Zero(to).OverflowInt(n)
	case isUintKind(to.Kind()):
		return n >= 0 && !reflect.Zero(to).OverflowUint(uint64(n))
	default:
		return !reflect.Zero(to).OverflowFloat(float64(n))
	}
}

func uintFits(n uint64, to reflect.Type) bool {
	switch {
	case isIntKind(to.Kind()):
		return n <= math.MaxInt64 && !reflect.Zero(to).OverflowInt(int64(n))
	case isUintKind(to.Kind()):
		return !reflect.Zero(to).OverflowUint(n)
	default:
		return !reflect.Zero(to).OverflowFloat(float64(n))
	}
}

func floatFits(f float64, to reflect.Type) bool {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return to.Kind() == reflect.Float32
	case isIntKind(to.Kind()):
		return f >= math.MinInt64 && f < math.MaxInt64 && !reflect.Zero(to).OverflowInt(int64(f))
	case isUintKind(to.Kind()):
		return f >= 0 && f < math.MaxUint64 && !reflect.Zero(to).OverflowUint(uint64(f))
	default:
		return !reflect.Zero(to).OverflowFloat(f)
	}
}

func isIntKind(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive // integer kinds only
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUintKind(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive // unsigned kinds only
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}
