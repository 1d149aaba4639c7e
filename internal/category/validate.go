package category

import (
	"fmt"
	"math"
	"sort"
)

// DefaultMaxDepth is the depth ceiling applied by RunAll.
const DefaultMaxDepth = 50

// PathReport is the result of the path/depth consistency check. Errors
// accumulate per violation; a broken category never aborts the run.
// Each message names the category, its ID, and the conflicting values,
// since the strings drive the admin report directly.
type PathReport struct {
	Valid  bool
	Errors []string
}

// Statistics summarizes the shape of the category tree.
type Statistics struct {
	TotalCategories     int
	RootCategories      int
	LeafCategories      int
	ContainerCategories int
	MaxDepth            int
	AvgDepth            float64 // rounded to 1 decimal
}

// Report is the combined output of all structural checks.
type Report struct {
	Orphaned       []Category
	Circular       []string
	PathValidation PathReport
	ExcessiveDepth []Category
	Stats          Statistics
	HasIssues      bool
}

// FindOrphans returns categories whose declared parent does not exist
// in the collection.
func FindOrphans(categories []Category) []Category {
	ids := idSet(categories)
	var orphans []Category
	for _, c := range categories {
		if c.ParentID != nil && !ids[*c.ParentID] {
			orphans = append(orphans, c)
		}
	}
	return orphans
}

// DetectCycles returns the IDs of every category that sits on a parent
// cycle, sorted. Categories that merely point into a cycle are not
// reported. The walk is iterative with an explicit chain, so corrupted
// parent pointers can never blow the stack or loop forever.
func DetectCycles(categories []Category) []string {
	byID := make(map[string]*Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	resolved := make(map[string]bool, len(categories))
	cyclic := make(map[string]bool)

	for _, c := range categories {
		if resolved[c.ID] {
			continue
		}

		var chain []string
		pos := make(map[string]int)
		cur := c.ID
		for {
			if at, onChain := pos[cur]; onChain {
				// Everything from the first occurrence onward loops.
				for _, id := range chain[at:] {
					cyclic[id] = true
				}
				break
			}
			if resolved[cur] {
				break
			}
			node, ok := byID[cur]
			if !ok {
				// Dangling parent; the orphan check reports it.
				break
			}
			pos[cur] = len(chain)
			chain = append(chain, cur)
			if node.ParentID == nil {
				break
			}
			cur = *node.ParentID
		}
		for _, id := range chain {
			resolved[id] = true
		}
	}

	out := make([]string, 0, len(cyclic))
	for id := range cyclic {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ValidatePathConsistency checks that every category's denormalized
// Depth and Path agree with its parent pointer.
func ValidatePathConsistency(categories []Category) PathReport {
	ids := idSet(categories)
	var errs []string

	for _, c := range categories {
		if c.ParentID == nil {
			if c.Depth != 0 {
				errs = append(errs, fmt.Sprintf(
					"category %q (%s): root category has depth %d, expected 0",
					c.Name, c.ID, c.Depth))
			}
			if len(c.Path) != 0 {
				errs = append(errs, fmt.Sprintf(
					"category %q (%s): root category has %d path entries, expected none",
					c.Name, c.ID, len(c.Path)))
			}
			continue
		}

		if c.Depth != len(c.Path) {
			errs = append(errs, fmt.Sprintf(
				"category %q (%s): depth %d doesn't match path length %d",
				c.Name, c.ID, c.Depth, len(c.Path)))
		}
		if len(c.Path) > 0 {
			if last := c.Path[len(c.Path)-1]; last != *c.ParentID {
				errs = append(errs, fmt.Sprintf(
					"category %q (%s): last path entry %q doesn't match parent %q",
					c.Name, c.ID, last, *c.ParentID))
			}
		}
		for _, ancestor := range c.Path {
			if !ids[ancestor] {
				errs = append(errs, fmt.Sprintf(
					"category %q (%s): path entry %q doesn't reference an existing category",
					c.Name, c.ID, ancestor))
			}
		}
	}

	return PathReport{Valid: len(errs) == 0, Errors: errs}
}

// FindExcessiveDepth returns categories deeper than maxDepth.
func FindExcessiveDepth(categories []Category, maxDepth int) []Category {
	var out []Category
	for _, c := range categories {
		if c.Depth > maxDepth {
			out = append(out, c)
		}
	}
	return out
}

// ComputeStatistics summarizes the collection.
func ComputeStatistics(categories []Category) Statistics {
	s := Statistics{TotalCategories: len(categories)}
	var depthSum int
	for _, c := range categories {
		if c.ParentID == nil {
			s.RootCategories++
		}
		if c.IsLeaf {
			s.LeafCategories++
		} else {
			s.ContainerCategories++
		}
		if c.Depth > s.MaxDepth {
			s.MaxDepth = c.Depth
		}
		depthSum += c.Depth
	}
	if len(categories) > 0 {
		s.AvgDepth = math.Round(float64(depthSum)/float64(len(categories))*10) / 10
	}
	return s
}

// RunAll runs every structural check with the default depth ceiling and
// combines the results. The audit is read-only; a fetch failure in the
// caller simply never reaches it.
func RunAll(categories []Category) Report {
	r := Report{
		Orphaned:       FindOrphans(categories),
		Circular:       DetectCycles(categories),
		PathValidation: ValidatePathConsistency(categories),
		ExcessiveDepth: FindExcessiveDepth(categories, DefaultMaxDepth),
		Stats:          ComputeStatistics(categories),
	}
	r.HasIssues = len(r.Orphaned) > 0 ||
		len(r.Circular) > 0 ||
		len(r.ExcessiveDepth) > 0 ||
		!r.PathValidation.Valid
	return r
}

func idSet(categories []Category) map[string]bool {
	ids := make(map[string]bool, len(categories))
	for _, c := range categories {
		ids[c.ID] = true
	}
	return ids
}
