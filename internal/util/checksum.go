package util

import (
	"hash/crc32"
)

// Checksum utilities for replica content digests
// Uses CRC32 (IEEE polynomial) for fast checksum computation

var (
	// crc32Table is precomputed for better performance
	crc32Table = crc32.MakeTable(crc32.IEEE)
)

// ComputeChecksum computes a CRC32 checksum for the given data
// Returns a 32-bit checksum value
func ComputeChecksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32Table)
}

// UpdateChecksum folds data into a running checksum. Digesting a memory
// image word by word with UpdateChecksum yields the same value as
// ComputeChecksum over the concatenated words.
func UpdateChecksum(sum uint32, data []byte) uint32 {
	return crc32.Update(sum, crc32Table, data)
}

// ValidateChecksum validates data against an expected checksum
// Returns true if the checksum matches, false otherwise
func ValidateChecksum(data []byte, expected uint32) bool {
	return ComputeChecksum(data) == expected
}
