// Package pairing matches raw and watermarked asset references that
// describe the same item. Upload tooling names both halves of a pair
// with the same trailing sequence number; the matcher extracts that
// number from each filename and intersects the two sides.
package pairing

import (
	"sort"
	"strconv"
	"strings"
)

// AssetRef is one uploaded asset reference: a filename plus a
// fetchable URL.
type AssetRef struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Pair is a matched raw/watermarked couple sharing one sequence
// number.
type Pair struct {
	Number int
	Raw    AssetRef
	WM     AssetRef
}

// SequenceNumber extracts the item sequence number from an asset
// filename. Two upload conventions are recognized: a trailing
// underscore number ("12-27-2025_12.png" -> 12) and a trailing
// parenthesized number ("scan (3).png" -> 3). Zero means no usable
// number.
func SequenceNumber(filename string) int {
	name := strings.TrimSpace(filename)
	dot := strings.LastIndex(name, ".")
	if dot == -1 {
		return 0
	}
	base := name[:dot]

	if i := strings.LastIndex(base, "_"); i != -1 {
		tail := strings.TrimSpace(base[i+1:])
		if isDigits(tail) {
			if n, _ := strconv.Atoi(tail); n > 0 {
				return n
			}
			return 0
		}
	}

	close := strings.LastIndex(base, ")")
	if close != -1 {
		open := strings.LastIndex(base[:close], "(")
		if open != -1 {
			inside := strings.TrimSpace(base[open+1 : close])
			if isDigits(inside) {
				if n, _ := strconv.Atoi(inside); n > 0 {
					return n
				}
			}
		}
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Match intersects the two sides by sequence number and returns the
// pairs in ascending number order. Within one side a later reference
// with the same number replaces an earlier one, mirroring how
// re-uploads supersede originals. References without a usable number
// are ignored.
func Match(raw, wm []AssetRef) []Pair {
	rawByNum := index(raw)
	wmByNum := index(wm)

	var nums []int
	for n := range rawByNum {
		if _, ok := wmByNum[n]; ok {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)

	pairs := make([]Pair, 0, len(nums))
	for _, n := range nums {
		pairs = append(pairs, Pair{Number: n, Raw: rawByNum[n], WM: wmByNum[n]})
	}
	return pairs
}

func index(refs []AssetRef) map[int]AssetRef {
	m := make(map[int]AssetRef, len(refs))
	for _, r := range refs {
		if n := SequenceNumber(r.Filename); n > 0 {
			m[n] = r
		}
	}
	return m
}
