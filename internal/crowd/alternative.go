package crowd

import "github.com/MenukaRanasinghe/SmartSL/internal/common"

// AlternativeFor suggests a quieter place when currentLabel is Busy or Very Busy.
// The first Quiet place other than exclude wins, then the first Moderate one.
// Candidates are scanned in snapshot order.
func AlternativeFor(currentLabel string, snapshot []Snapshot, exclude string) *Snapshot {
	if !IsBusyLabel(currentLabel) {
		return nil
	}
	for _, want := range []string{LabelQuiet, LabelModerate} {
		for i := range snapshot {
			s := snapshot[i]
			if common.SameName(s.Name, exclude) {
				continue
			}
			if s.BusyLevel == want {
				return &s
			}
		}
	}
	return nil
}

// CurrentLabel returns the label of the first snapshot entry for place.
func CurrentLabel(snapshot []Snapshot, place string) (string, bool) {
	for _, s := range snapshot {
		if common.SameName(s.Name, place) {
			return s.BusyLevel, true
		}
	}
	return "", false
}
