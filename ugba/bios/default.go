//go:build !gameboyadvance

package bios

// Default is the BIOS service of the build target.
var Default Service = Software{}
