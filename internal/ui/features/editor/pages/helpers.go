package pages

import (
	"strconv"
	"strings"
)

// Helper functions for editor page components

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"

func itoa(n int) string {
	return strconv.Itoa(n)
}

// swatchColor quotes a type color as a datastar string expression.
func swatchColor(color string) string {
	return "'" + strings.ReplaceAll(color, "'", "") + "'"
}
