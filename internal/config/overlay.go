package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SkillsFile is the optional skills.yml kept next to config.yml.
type SkillsFile struct {
	Skills  []SkillRule       `yaml:"skills"`
	Aliases map[string]string `yaml:"region_aliases"`
}

// OverlaySkills replaces the skill rules and merges region aliases from
// skillsPath when it exists.
func OverlaySkills(cfg *Config, skillsPath string) error {
	b, err := os.ReadFile(skillsPath)
	if err != nil {
		// a missing overlay is not an error
		return nil
	}

	var sf SkillsFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return err
	}

	if len(sf.Skills) > 0 {
		cfg.Skills = sf.Skills
	}
	if len(sf.Aliases) > 0 {
		if cfg.Regions.Aliases == nil {
			cfg.Regions.Aliases = map[string]string{}
		}
		for k, v := range sf.Aliases {
			cfg.Regions.Aliases[k] = v
		}
	}
	return nil
}
