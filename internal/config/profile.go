package config

// Profile holds assessment defaults for one team or engagement.
type Profile struct {
	// Persona is a persona key ("ciso", "devsecops", "auditor", "developer").
	Persona string `yaml:"persona,omitempty"`

	// Standards are standard keys ("soc2", "pci-dss").
	Standards []string `yaml:"standards,omitempty"`

	// Region is a region key ("us", "eu").
	Region string `yaml:"region,omitempty"`

	// AssessmentModel overrides the report model.
	AssessmentModel string `yaml:"assessmentModel,omitempty"`

	// ChatModel overrides the conversation model.
	ChatModel string `yaml:"chatModel,omitempty"`

	// Precheck toggles the input completeness check. Nil keeps the default.
	Precheck *bool `yaml:"precheck,omitempty"`

	// RequireComplete aborts on incomplete input. Nil keeps the default.
	RequireComplete *bool `yaml:"requireComplete,omitempty"`
}

// File represents the structure of the .sentinel configuration file.
type File struct {
	// Defaults apply to every run unless a selected profile overrides them.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles maps profile names to their settings.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// GetProfile returns the defaults merged with the named profile. An empty
// name returns the defaults. Unknown names return ErrProfileNotFound.
func (cf *File) GetProfile(name string) (Profile, error) {
	result := cf.Defaults
	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	if p.Persona != "" {
		result.Persona = p.Persona
	}
	if len(p.Standards) > 0 {
		result.Standards = p.Standards
	}
	if p.Region != "" {
		result.Region = p.Region
	}
	if p.AssessmentModel != "" {
		result.AssessmentModel = p.AssessmentModel
	}
	if p.ChatModel != "" {
		result.ChatModel = p.ChatModel
	}
	if p.Precheck != nil {
		result.Precheck = p.Precheck
	}
	if p.RequireComplete != nil {
		result.RequireComplete = p.RequireComplete
	}
	return result, nil
}
