package settings

// ActionSet is the only write action the synchronizer emits.
const ActionSet = "set"

// WriteTarget is a single declarative configuration mutation.
type WriteTarget struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Value  any    `json:"value"`
}

// DictionaryOptions is the per-profile configuration written for a
// newly imported dictionary.
type DictionaryOptions struct {
	Priority               int  `json:"priority"`
	Enabled                bool `json:"enabled"`
	AllowSecondarySearches bool `json:"allowSecondarySearches"`
}

// OptionsFull is the full configuration snapshot.
type OptionsFull struct {
	Version  int       `json:"version"`
	Profiles []Profile `json:"profiles"`
}

// Profile is one independently configured user context.
type Profile struct {
	Name    string         `json:"name"`
	Options map[string]any `json:"options"`
}

// MainDictionary reads the profile's current main dictionary choice.
// A missing general section reads as the empty string.
func (p Profile) MainDictionary() string {
	general, ok := p.Options["general"].(map[string]any)
	if !ok {
		return ""
	}
	main, _ := general["mainDictionary"].(string)
	return main
}

// AddDictionaryTargets builds the write targets registering a newly
// imported dictionary on every profile. When the dictionary is
// sequenced it also becomes the profile's main dictionary, but only
// where no main dictionary is chosen yet; an existing choice is never
// overwritten. Order is profile-ascending, dictionary entry first.
func AddDictionaryTargets(full *OptionsFull, sequenced bool, title string) []WriteTarget {
	var targets []WriteTarget
	for i, profile := range full.Profiles {
		targets = append(targets, WriteTarget{
			Action: ActionSet,
			Path:   KeyedPath(ProfilePath(i, "options", "dictionaries"), title),
			Value: DictionaryOptions{
				Priority:               0,
				Enabled:                true,
				AllowSecondarySearches: false,
			},
		})
		if sequenced && profile.MainDictionary() == "" {
			targets = append(targets, WriteTarget{
				Action: ActionSet,
				Path:   ProfilePath(i, "options", "general", "mainDictionary"),
				Value:  title,
			})
		}
	}
	return targets
}

// ClearDictionaryTargets builds the write targets removing all
// dictionary configuration from every profile.
func ClearDictionaryTargets(full *OptionsFull) []WriteTarget {
	var targets []WriteTarget
	for i := range full.Profiles {
		targets = append(targets,
			WriteTarget{
				Action: ActionSet,
				Path:   ProfilePath(i, "options", "dictionaries"),
				Value:  map[string]any{},
			},
			WriteTarget{
				Action: ActionSet,
				Path:   ProfilePath(i, "options", "general", "mainDictionary"),
				Value:  "",
			},
		)
	}
	return targets
}
