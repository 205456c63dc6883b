//go:build !unix

package ui

func TermWidth() int { return 80 }
