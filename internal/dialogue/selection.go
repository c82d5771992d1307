package dialogue

import (
	"strconv"
	"strings"

	"github.com/roach88/carelog/internal/textnorm"
)

var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// selectionFiller is ignored when reading a selection ("the first one",
// "1 and 3", "both of them").
var selectionFiller = map[string]bool{
	"the": true, "one": true, "ones": true, "number": true, "numbers": true, "no": true,
	"option": true, "please": true, "and": true, "of": true, "them": true, "#": true,
}

// ParseSelection reads a choice among n listed candidates and returns
// zero-based indices in the order given.
//
// Accepted forms: ordinal lists ("1", "2, 3", "first and third"), "all",
// "both", "first" and "last". "both" needs at least two candidates; with
// more than two it selects all of them, the same as "all". Anything else,
// including an out-of-range number, is not a selection.
func ParseSelection(utterance string, n int) ([]int, bool) {
	if n <= 0 {
		return nil, false
	}
	norm := strings.NewReplacer(",", " ", "&", " ", ";", " ").Replace(textnorm.Normalize(utterance))

	var fields []string
	for _, f := range strings.Fields(norm) {
		f = strings.Trim(f, ".!?")
		if f != "" && !selectionFiller[f] {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, false
	}

	if len(fields) == 1 {
		switch fields[0] {
		case "all", "everything", "each":
			return allIndices(n), true
		case "both":
			if n < 2 {
				return nil, false
			}
			return allIndices(n), true
		case "last":
			return []int{n - 1}, true
		}
	}

	var out []int
	seen := make(map[int]bool)
	for _, f := range fields {
		k, ok := position(f)
		if !ok || k < 1 || k > n {
			return nil, false
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k-1)
		}
	}
	return out, true
}

// position reads "2", "#2", "2nd" or "second" as 2.
func position(f string) (int, bool) {
	if k, ok := ordinals[f]; ok {
		return k, true
	}
	f = strings.TrimPrefix(f, "#")
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(f, suffix) {
			f = strings.TrimSuffix(f, suffix)
			break
		}
	}
	k, err := strconv.Atoi(f)
	return k, err == nil
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
