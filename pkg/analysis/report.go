package analysis

// Report holds aggregated views of a check run.
// Computed once by Analyze and shared by the text and JSON reporters.
type Report struct {
	// ByOrigin groups problems by the stage that found them.
	ByOrigin []OriginAnalysis `json:"byOrigin,omitempty"`

	// ByTab groups problems by tab file.
	ByTab []TabAnalysis `json:"byTab,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"totals"`

	// Version is the report format version.
	Version string `json:"version"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Sketches         int `json:"sketches"`
	SketchesErrored  int `json:"sketchesErrored"`
	Tabs             int `json:"tabs"`
	TabsWithProblems int `json:"tabsWithProblems"`
	Problems         int `json:"problems"`
	Errors           int `json:"errors"`
	Warnings         int `json:"warnings"`
}

// HasProblems returns true if there are any problems.
func (t Totals) HasProblems() bool {
	return t.Problems > 0
}

// HasErrors returns true if there are any errors.
func (t Totals) HasErrors() bool {
	return t.Errors > 0
}

// counts is embedded by each view.
type counts struct {
	Problems int `json:"problems"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// OriginAnalysis contains aggregated data for one origin.
type OriginAnalysis struct {
	Origin string `json:"origin"`
	counts

	// Sketches lists the names of sketches with problems of this origin.
	Sketches []string `json:"sketches,omitempty"`
}

// TabAnalysis contains aggregated data for a single tab.
type TabAnalysis struct {
	Path   string `json:"path"`
	Sketch string `json:"sketch"`
	counts

	// Origins lists the origins seen in this tab.
	Origins []string `json:"origins,omitempty"`
}
