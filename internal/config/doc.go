// Package config loads and validates pagekit.json project configuration.
package config
