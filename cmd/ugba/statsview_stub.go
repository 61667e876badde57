//go:build !statsview

package main

import "io"

func launchStatsview(io.Writer) bool { return false }
