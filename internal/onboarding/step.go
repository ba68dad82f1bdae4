// Package onboarding sequences the onboarding wizard as an explicit
// finite-state machine over named steps.
package onboarding

// Step is an onboarding wizard state.
type Step int

const (
	StepLogin Step = iota
	StepClaimWallet
	StepConnectExternalWallet
	StepProfileSetup
	StepCommunitySummary
	StepDashboard
)

var stepNames = map[Step]string{
	StepLogin:                 "login",
	StepClaimWallet:           "claim_wallet",
	StepConnectExternalWallet: "connect_external_wallet",
	StepProfileSetup:          "profile_setup",
	StepCommunitySummary:      "community_summary",
	StepDashboard:             "dashboard",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Event drives a transition.
type Event string

const (
	EventNext Event = "next"
	EventSkip Event = "skip"
	EventBack Event = "back"
)

// Variant selects whether the flow includes the login step.
type Variant int

const (
	WithLogin Variant = iota
	SkipLogin
)

func (v Variant) String() string {
	if v == SkipLogin {
		return "skip_login"
	}
	return "with_login"
}

// FirstStep is where the variant starts.
func (v Variant) FirstStep() Step {
	if v == SkipLogin {
		return StepClaimWallet
	}
	return StepLogin
}

// TotalSteps is the number of steps shown to the user.
func (v Variant) TotalSteps() int {
	if v == SkipLogin {
		return 4
	}
	return 5
}

// DisplayNumber is the 1-based step number shown for s, capped at the total.
func (v Variant) DisplayNumber(s Step) int {
	n := int(s) + 1
	if v == SkipLogin {
		n = int(s)
	}
	if n > v.TotalSteps() {
		n = v.TotalSteps()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// transitions is the full transition table. Back from the variant's first
// step is rejected separately.
var transitions = map[Step]map[Event]Step{
	StepLogin: {
		EventNext: StepClaimWallet,
	},
	StepClaimWallet: {
		EventNext: StepConnectExternalWallet,
		EventSkip: StepConnectExternalWallet,
		EventBack: StepLogin,
	},
	StepConnectExternalWallet: {
		EventNext: StepProfileSetup,
		EventSkip: StepProfileSetup,
		EventBack: StepClaimWallet,
	},
	StepProfileSetup: {
		EventNext: StepCommunitySummary,
		EventBack: StepConnectExternalWallet,
	},
	StepCommunitySummary: {
		EventNext: StepDashboard,
		EventBack: StepProfileSetup,
	},
	StepDashboard: {},
}

// Target returns the step reached from s on e within variant v.
func Target(v Variant, s Step, e Event) (Step, bool) {
	if e == EventBack && s == v.FirstStep() {
		return s, false
	}
	to, ok := transitions[s][e]
	return to, ok
}
