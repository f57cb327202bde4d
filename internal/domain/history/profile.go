package history

// Profile holds the per-athlete baselines the synthetic series vary around.
type Profile struct {
	Recovery float64 `json:"recovery"`
	HRV      float64 `json:"hrv"`
	Strain   float64 `json:"strain"`
	Sleep    float64 `json:"sleep"`
}

// DefaultProfileID is used for athletes without a baseline of their own.
const DefaultProfileID = 1

var profiles = map[int]Profile{
	1: {Recovery: 85, HRV: 62, Strain: 13, Sleep: 7.5},
	2: {Recovery: 80, HRV: 58, Strain: 12, Sleep: 7.2},
	3: {Recovery: 75, HRV: 55, Strain: 10, Sleep: 8.0},
	4: {Recovery: 70, HRV: 50, Strain: 14, Sleep: 6.8},
	5: {Recovery: 82, HRV: 60, Strain: 11, Sleep: 7.4},
	6: {Recovery: 55, HRV: 42, Strain: 8, Sleep: 6.5},
	7: {Recovery: 88, HRV: 65, Strain: 15, Sleep: 7.8},
}

// ProfileFor returns the baseline of an athlete, falling back to the default profile.
func ProfileFor(athleteID int) Profile {
	if p, ok := profiles[athleteID]; ok {
		return p
	}
	return profiles[DefaultProfileID]
}

// HasProfile reports whether the athlete has a dedicated baseline.
func HasProfile(athleteID int) bool {
	_, ok := profiles[athleteID]
	return ok
}
