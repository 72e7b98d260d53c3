package grace

// Resolution precedence: Staff > Department > Company > Shift default.
// The first level supplying a non-empty config wins in full; levels are
// never merged with each other. Within the winning config each sub-rule is
// merged field-wise onto the defaults for its violation type, so a partial
// rule keeps the default enablement, count, cycle and type. The late-login
// minutes default comes from the shift modal fallback.

// Provider yields the grace config of one precedence level, or nil when the
// level has none (including malformed stored data).
type Provider func() *Config

// Resolved is the effective config after precedence resolution, with both
// rules fully materialized.
type Resolved struct {
	LateLogin   Rule `json:"lateLogin"`
	EarlyLogout Rule `json:"earlyLogout"`
}

// Rule returns the effective rule for the given violation type.
func (r Resolved) Rule(v ViolationType) Rule {
	if v == ViolationLateLogin {
		return r.LateLogin
	}
	return r.EarlyLogout
}

// Resolve walks the providers in precedence order and materializes the first
// non-empty config. When every level is empty the defaults alone apply, with
// shiftGraceMinutes as the late-login minutes.
func Resolve(providers []Provider, shiftGraceMinutes int) Resolved {
	for _, p := range providers {
		if cfg := p(); !cfg.IsEmpty() {
			return fillDefaults(*cfg, shiftGraceMinutes)
		}
	}
	return fillDefaults(Config{}, shiftGraceMinutes)
}

// ResolveLevels is the common four-level call: staff fine modal, department
// fine modal, company payroll settings, then the shift fallback.
func ResolveLevels(staff, department, company *Config, shiftGraceMinutes int) Resolved {
	return Resolve([]Provider{
		func() *Config { return staff },
		func() *Config { return department },
		func() *Config { return company },
	}, shiftGraceMinutes)
}

func fillDefaults(cfg Config, shiftGraceMinutes int) Resolved {
	late := DefaultLateLogin()
	late.GraceMinutesPerDay = shiftGraceMinutes
	early := DefaultEarlyLogout()
	return Resolved{
		LateLogin:   cfg.LateLogin.Apply(late),
		EarlyLogout: cfg.EarlyLogout.Apply(early),
	}
}
