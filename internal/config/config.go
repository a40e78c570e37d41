// Package config loads the recognized runtime options from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the export surface: a 2.5 x 3.5 inch card at 300 DPI.
const (
	DefaultTargetAspect   = 2.5 / 3.5
	DefaultOutputWidth    = 750
	DefaultOutputHeight   = 1050
	DefaultMaxEnhancement = 200.0
	DefaultAutoFitBias    = 1.1
)

// Config holds the options the surrounding application may override.
type Config struct {
	TargetAspect   float64
	OutputWidth    int
	OutputHeight   int
	MaxEnhancement float64
	AutoFitBias    float64
	// OCRTitles enables card-title recognition on extracted cards.
	OCRTitles bool
}

// Load reads the .env file if present, then the environment, falling back
// to defaults for anything unset or unparseable.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		TargetAspect:   envFloat("CARDSMITH_TARGET_ASPECT", DefaultTargetAspect),
		OutputWidth:    envInt("CARDSMITH_OUTPUT_WIDTH", DefaultOutputWidth),
		OutputHeight:   envInt("CARDSMITH_OUTPUT_HEIGHT", DefaultOutputHeight),
		MaxEnhancement: envFloat("CARDSMITH_MAX_ENHANCEMENT", DefaultMaxEnhancement),
		AutoFitBias:    envFloat("CARDSMITH_AUTOFIT_BIAS", DefaultAutoFitBias),
		OCRTitles:      envBool("CARDSMITH_OCR_TITLES", false),
	}
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
