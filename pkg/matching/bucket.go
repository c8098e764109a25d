package matching

import "sort"

// candidatePairs generates the record index pairs worth scoring. Comparing
// every record against every other record is quadratic in batch size, so
// pairs are limited to:
//
//   - records whose bucket keys are compatible: last-name parts within edit
//     distance 1 and institution parts equal (or either empty)
//   - records sharing an ORCID or a normalized email, regardless of bucket
//
// Records without a name part only pair through the identity indexes.
// Returned pairs are unique, have i < j, and are sorted by (i, j).
func candidatePairs(profiles []profile, scorer *Scorer) [][2]int {
	seen := make(map[[2]int]bool)
	var pairs [][2]int

	addPair := func(i, j int) {
		if i == j {
			return
		}
		if i > j {
			i, j = j, i
		}
		key := [2]int{i, j}
		if seen[key] {
			return
		}
		seen[key] = true
		pairs = append(pairs, key)
	}

	// Group records by the name part of their bucket key
	nameGroups := make(map[string][]int)
	for i, p := range profiles {
		if p.key.NamePart == "" {
			continue
		}
		nameGroups[p.key.NamePart] = append(nameGroups[p.key.NamePart], i)
	}

	nameParts := make([]string, 0, len(nameGroups))
	for part := range nameGroups {
		nameParts = append(nameParts, part)
	}
	sort.Strings(nameParts)

	institutionsCompatible := func(a, b profile) bool {
		return a.key.InstitutionPart == b.key.InstitutionPart ||
			a.key.InstitutionPart == "" || b.key.InstitutionPart == ""
	}

	for gi, partA := range nameParts {
		groupA := nameGroups[partA]

		// Pairs within the same name bucket
		for x := 0; x < len(groupA); x++ {
			for y := x + 1; y < len(groupA); y++ {
				if institutionsCompatible(profiles[groupA[x]], profiles[groupA[y]]) {
					addPair(groupA[x], groupA[y])
				}
			}
		}

		// Relaxed pairs across near-identical name buckets. The edit
		// distance tolerance absorbs single-character typos in last names.
		for gj := gi + 1; gj < len(nameParts); gj++ {
			partB := nameParts[gj]
			if scorer.LevenshteinDistance(partA, partB) > 1 {
				continue
			}
			for _, i := range groupA {
				for _, j := range nameGroups[partB] {
					if institutionsCompatible(profiles[i], profiles[j]) {
						addPair(i, j)
					}
				}
			}
		}
	}

	// Identity indexes: a shared ORCID or email is a candidate pair even
	// when the names bucket apart entirely.
	byORCID := make(map[string][]int)
	byEmail := make(map[string][]int)
	for i, p := range profiles {
		if p.orcid != "" {
			byORCID[p.orcid] = append(byORCID[p.orcid], i)
		}
		if p.email != "" {
			byEmail[p.email] = append(byEmail[p.email], i)
		}
	}
	for _, group := range byORCID {
		for x := 0; x < len(group); x++ {
			for y := x + 1; y < len(group); y++ {
				addPair(group[x], group[y])
			}
		}
	}
	for _, group := range byEmail {
		for x := 0; x < len(group); x++ {
			for y := x + 1; y < len(group); y++ {
				addPair(group[x], group[y])
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	return pairs
}
