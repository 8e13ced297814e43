package grid

// Cell codes written by the external fire simulation.
const (
	CodeTree         = "T"
	CodeBurningTree  = "*"
	CodeTreeAsh      = "A"
	CodeGrass        = "G"
	CodeBurningGrass = "+"
	CodeGrassAsh     = "-"
	CodeWater        = "W"
)

// Category is a tracked statistics bucket.
type Category int

const (
	Trees Category = iota
	BurningTrees
	TreeAshes
	Grasses
	BurningGrasses
	GrassAshes
	Water
	NumCategories
)

var categoryNames = [NumCategories]string{
	Trees:          "trees",
	BurningTrees:   "burning_trees",
	TreeAshes:      "tree_ashes",
	Grasses:        "grasses",
	BurningGrasses: "burning_grasses",
	GrassAshes:     "grass_ashes",
	Water:          "water",
}

var categoryLabels = [NumCategories]string{
	Trees:          "Trees",
	BurningTrees:   "Burning Trees",
	TreeAshes:      "Tree Ashes",
	Grasses:        "Grasses",
	BurningGrasses: "Burning Grasses",
	GrassAshes:     "Grass Ashes",
	Water:          "Water",
}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// Label is the human readable name used in charts and tables.
func (c Category) Label() string {
	if c < 0 || c >= NumCategories {
		return "Unknown"
	}
	return categoryLabels[c]
}

// Categories lists every tracked category in index order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory resolves a category from its String form.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// Classify maps a cell code to its category. Unknown codes land in the
// tree-ash bucket, which doubles as "ash/other".
func Classify(code string) Category {
	switch code {
	case CodeTree:
		return Trees
	case CodeBurningTree, "**", "***":
		return BurningTrees
	case CodeTreeAsh:
		return TreeAshes
	case CodeGrass:
		return Grasses
	case CodeBurningGrass:
		return BurningGrasses
	case CodeGrassAsh:
		return GrassAshes
	case CodeWater:
		return Water
	default:
		return TreeAshes
	}
}

// Counts holds one tally per category for a single frame.
type Counts [NumCategories]int64

// Count scans every cell of f exactly once.
func Count(f Frame) Counts {
	var c Counts
	for _, row := range f.rows {
		for _, code := range row {
			c[Classify(code)]++
		}
	}
	return c
}

func (c Counts) Burning() int64 { return c[BurningTrees] + c[BurningGrasses] }

func (c Counts) Burned() int64 { return c[TreeAshes] + c[GrassAshes] }

// Vegetation is every cell that is, was, or is becoming fuel.
func (c Counts) Vegetation() int64 {
	return c[Trees] + c[Grasses] + c.Burning() + c.Burned()
}
