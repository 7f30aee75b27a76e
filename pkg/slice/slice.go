// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with Map and Filter.
*/
package slice

import "strings"

// Map applies transform to every element of input.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter keeps the elements of input for which keep returns true.
func Filter[T any](input []T, keep func(T) bool) []T {
	var result []T
	for _, v := range input {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}

// SplitList splits a comma-separated setting into trimmed, non-empty entries.
func SplitList(raw string) []string {
	return Filter(Map(strings.Split(raw, ","), strings.TrimSpace), func(entry string) bool { return entry != "" })
}
