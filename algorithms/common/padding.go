package common

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// PadMode selects how values are generated beyond the edges of an array
type PadMode string

const (
	PadReflect PadMode = "reflect"
	PadEdge    PadMode = "edge"
	PadMedian  PadMode = "median"
	PadMean    PadMode = "mean"
	PadMaximum PadMode = "maximum"
	PadMinimum PadMode = "minimum"
)

// ReflectType selects plain mirroring ("even") or point reflection about
// the edge value ("odd") for PadReflect.
type ReflectType string

const (
	ReflectEven ReflectType = "even"
	ReflectOdd  ReflectType = "odd"
)

// PadOptions configures a single Pad call
type PadOptions struct {
	Mode        PadMode     `yaml:"mode"`
	ReflectType ReflectType `yaml:"reflect_type,omitempty"`
	// StatLength is the number of edge values summarised by the statistic
	// modes. Zero uses the whole array.
	StatLength int `yaml:"stat_length,omitempty"`
}

// Validate rejects unknown modes
func (o PadOptions) Validate() error {
	switch o.Mode {
	case PadReflect:
		switch o.ReflectType {
		case ReflectEven, ReflectOdd, "":
		default:
			return fmt.Errorf("unknown reflect type %q", o.ReflectType)
		}
	case PadEdge, PadMedian, PadMean, PadMaximum, PadMinimum:
	default:
		return fmt.Errorf("unknown pad mode %q", o.Mode)
	}
	if o.StatLength < 0 {
		return fmt.Errorf("stat length must be >= 0, got %d", o.StatLength)
	}
	return nil
}

// Pad extends data by width values on both sides according to opts.
// The input is not modified.
func Pad(data []float64, width int, opts PadOptions) ([]float64, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if width < 0 {
		return nil, fmt.Errorf("pad width must be >= 0, got %d", width)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot pad an empty array")
	}
	if width == 0 {
		return Clone(data), nil
	}

	if opts.Mode == PadReflect {
		return padReflect(data, width, opts.ReflectType == ReflectOdd), nil
	}

	left, right := data[0], data[len(data)-1]
	if opts.Mode != PadEdge {
		n := statLength(len(data), opts.StatLength)
		left = edgeStatistic(data[:n], opts.Mode)
		right = edgeStatistic(data[len(data)-n:], opts.Mode)
	}

	out := make([]float64, len(data)+2*width)
	for i := range width {
		out[i] = left
		out[len(out)-1-i] = right
	}
	copy(out[width:], data)
	return out, nil
}

func statLength(n, requested int) int {
	if requested <= 0 || requested > n {
		return n
	}
	return requested
}

func edgeStatistic(values []float64, mode PadMode) float64 {
	switch mode {
	case PadMedian:
		return Median(values)
	case PadMean:
		return Mean(values)
	case PadMaximum:
		return floats.Max(values)
	case PadMinimum:
		return floats.Min(values)
	}
	return 0
}

// padReflect mirrors data about its end samples (excluding the edge sample
// itself). Widths larger than len(data)-1 are handled by reflecting the
// already padded array again, chunk by chunk.
func padReflect(data []float64, width int, odd bool) []float64 {
	if len(data) == 1 {
		out := make([]float64, 1+2*width)
		for i := range out {
			out[i] = data[0]
		}
		return out
	}

	cur := Clone(data)
	remainingLeft, remainingRight := width, width
	for remainingLeft > 0 || remainingRight > 0 {
		chunk := len(cur) - 1

		nl := min(remainingLeft, chunk)
		newLeft := make([]float64, nl)
		for i := range nl {
			// newLeft is ordered outermost first
			v := cur[nl-i]
			if odd {
				v = 2*cur[0] - v
			}
			newLeft[i] = v
		}

		nr := min(remainingRight, chunk)
		last := len(cur) - 1
		newRight := make([]float64, nr)
		for i := range nr {
			v := cur[last-1-i]
			if odd {
				v = 2*cur[last] - v
			}
			newRight[i] = v
		}

		next := make([]float64, 0, len(cur)+nl+nr)
		next = append(next, newLeft...)
		next = append(next, cur...)
		next = append(next, newRight...)
		cur = next

		remainingLeft -= nl
		remainingRight -= nr
	}

	return cur
}
