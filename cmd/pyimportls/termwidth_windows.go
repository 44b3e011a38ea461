//go:build windows

package main

// terminalWidth has no portable ioctl-free implementation on Windows in
// this module's dependency surface; callers treat 0 as "unknown".
func terminalWidth() int { return 0 }
