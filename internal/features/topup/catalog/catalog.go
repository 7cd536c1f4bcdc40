// Package catalog holds the reward tables for airtime and data top-ups.
// Reward draws are weighted by repeating entries in the source slices.
package catalog

import (
	"math/rand"

	"referral-rewards-backend/internal/utils/phone"
)

// RewardKind distinguishes what a reward delivers.
type RewardKind string

const (
	KindAirtime RewardKind = "airtime"
	KindData    RewardKind = "data"
	KindTokens  RewardKind = "tokens"
)

// airtimeAmounts is shared across all networks. Duplicates are intentional,
// they weight the draw towards mid-range amounts.
var airtimeAmounts = []int{300, 500, 300, 100, 300, 500, 300, 300, 300, 500, 100}

var dataBundles = map[phone.Network][]string{
	phone.NetworkMTN:    {"500", "M1024", "500", "500", "M1024"},
	phone.NetworkAirtel: {"AIRTEL1GB", "AIRTEL500MB", "AIRTEL1GB", "AIRTEL1GB", "AIRTEL500MB"},
	phone.NetworkGlo:    {"glo100x", "glo200x", "G500", "glo100x", "glo200x", "glo100x"},
}

// fixedBundles are the variation ids used for direct bundle purchases.
var fixedBundles = map[phone.Network]string{
	phone.NetworkMTN:    "M1024",
	phone.NetworkAirtel: "AIRTEL1GB",
	phone.NetworkGlo:    "G500",
}

var bundleSizes = map[string]string{
	"500":         "500MB",
	"M1024":       "1GB",
	"AIRTEL1GB":   "1GB",
	"AIRTEL500MB": "500MB",
	"glo100x":     "1GB",
	"glo200x":     "1.25GB",
	"G500":        "1.35GB",
}

// RandomAirtime draws an airtime amount. Returns 0 for an unknown network.
func RandomAirtime(network phone.Network) int {
	if _, ok := dataBundles[network]; !ok {
		return 0
	}
	return airtimeAmounts[rand.Intn(len(airtimeAmounts))]
}

// RandomBundle draws a data bundle variation id for the network.
// Returns "" for an unknown network.
func RandomBundle(network phone.Network) string {
	bundles, ok := dataBundles[network]
	if !ok {
		return ""
	}
	return bundles[rand.Intn(len(bundles))]
}

// FixedBundle returns the variation id used when a user buys a bundle
// outright instead of winning one.
func FixedBundle(network phone.Network) (string, bool) {
	id, ok := fixedBundles[network]
	return id, ok
}

// BundleSize converts a variation id into a human-readable size. Unrecognized
// ids pass through unchanged.
func BundleSize(variationID string) string {
	if size, ok := bundleSizes[variationID]; ok {
		return size
	}
	return variationID
}
