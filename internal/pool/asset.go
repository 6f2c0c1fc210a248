package pool

import (
	"fmt"
	"strings"
)

// Asset selects one side of the pool.
type Asset uint8

const (
	AssetA Asset = iota
	AssetB
)

func (a Asset) String() string {
	switch a {
	case AssetA:
		return "A"
	case AssetB:
		return "B"
	default:
		return fmt.Sprintf("Asset(%d)", uint8(a))
	}
}

// Other returns the opposite side.
func (a Asset) Other() Asset {
	if a == AssetA {
		return AssetB
	}
	return AssetA
}

// ParseAsset accepts "a"/"b" in any case.
func ParseAsset(s string) (Asset, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return AssetA, nil
	case "B":
		return AssetB, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownAsset)
	}
}
