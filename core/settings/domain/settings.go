package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	cubeDomain "github.com/AzielCF/az-cube/cube/domain"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
)

// Recognized settings keys. Anything else found in storage is carried along untouched.
const (
	KeyInspection       = "inspection"
	KeyAutoScramble     = "autoScramble"
	KeySound            = "sound"
	KeyHoldToStart      = "holdToStart"
	KeyDarkMode         = "darkMode"
	KeyLargeTimer       = "largeTimer"
	KeyMilliseconds     = "milliseconds"
	KeyHideScramble     = "hideScramble"
	KeyRealtimeStats    = "realtimeStats"
	KeyPBNotifications  = "pbNotifications"
	KeyAdvancedAverages = "advancedAverages"
	KeyScrambleLength   = "scrambleLength"
	KeyCubeType         = "cubeType"
)

// Defaults returns a fresh copy of the default mapping.
func Defaults() map[string]any {
	return map[string]any{
		KeyInspection:       false,
		KeyAutoScramble:     true,
		KeySound:            false,
		KeyHoldToStart:      true,
		KeyDarkMode:         false,
		KeyLargeTimer:       false,
		KeyMilliseconds:     false,
		KeyHideScramble:     false,
		KeyRealtimeStats:    true,
		KeyPBNotifications:  true,
		KeyAdvancedAverages: false,
		KeyScrambleLength:   cubeDomain.DefaultScrambleLength,
		KeyCubeType:         string(cubeDomain.DefaultCubeType),
	}
}

// IsKnown reports whether key is one of the recognized settings.
func IsKnown(key string) bool {
	_, ok := Defaults()[key]
	return ok
}

// Coerce converts a raw value (JSON decoded or typed by a user) into the type of key.
func Coerce(key string, value any) (any, error) {
	def, ok := Defaults()[key]
	if !ok {
		return nil, pkgError.ValidationError(fmt.Sprintf("unknown setting %q", key))
	}

	switch def.(type) {
	case bool:
		return coerceBool(key, value)
	case int:
		return coerceLength(key, value)
	default:
		s, ok := value.(string)
		if !ok {
			return nil, pkgError.ValidationError(fmt.Sprintf("setting %q must be a string", key))
		}
		if key == KeyCubeType && !cubeDomain.CubeType(s).Valid() {
			return nil, pkgError.ValidationError(fmt.Sprintf("unsupported cube type %q", s))
		}
		return s, nil
	}
}

func coerceBool(key string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	}
	return false, pkgError.ValidationError(fmt.Sprintf("setting %q must be a boolean", key))
}

func coerceLength(key string, value any) (int, error) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, pkgError.ValidationError(fmt.Sprintf("setting %q must be an integer", key))
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, pkgError.ValidationError(fmt.Sprintf("setting %q must be an integer", key))
		}
		n = parsed
	default:
		return 0, pkgError.ValidationError(fmt.Sprintf("setting %q must be an integer", key))
	}
	if n < 1 {
		return 0, pkgError.ValidationError(fmt.Sprintf("setting %q must be at least 1", key))
	}
	return n, nil
}

type ChangeKind string

const (
	ChangeSet    ChangeKind = "set"
	ChangeReset  ChangeKind = "reset"
	ChangeImport ChangeKind = "import"
)

// Change describes one mutation of the store. Remote changes came from another instance.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Key      string     `json:"key,omitempty"`
	Value    any        `json:"value,omitempty"`
	SenderID string     `json:"sender_id,omitempty"`
	Remote   bool       `json:"-"`
}

// INotifier propagates changes between server instances sharing the same store.
type INotifier interface {
	Publish(ctx context.Context, change Change) error
	// Listen blocks, delivering changes published by any instance until ctx is done.
	Listen(ctx context.Context, fn func(Change)) error
}
