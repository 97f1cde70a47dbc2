package routing

import "strconv"

// Params is a typed view over extracted route parameters. Route matching
// yields strings; pages usually want numbers or flags.
type Params map[string]string

// String returns the named parameter, or fallback when absent.
func (p Params) String(name, fallback string) string {
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

// Int returns the named parameter as an int, or fallback when absent or
// not numeric.
func (p Params) Int(name string, fallback int) int {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Int64 returns the named parameter as an int64, or fallback when absent
// or not numeric.
func (p Params) Int64(name string, fallback int64) int64 {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// Bool returns the named parameter as a bool ("true", "1", "false", "0",
// ...), or fallback when absent or unparsable.
func (p Params) Bool(name string, fallback bool) bool {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
