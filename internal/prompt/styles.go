package prompt

// Style describes one of the selectable commit message tone styles.
type Style struct {
	Description string
	Example     string
}

// Styles is the catalog served by `git cai --list style`. The keys mirror
// the allowed values of the `style` config setting.
var Styles = map[string]Style{
	"professional": {
		Description: "Formal and matter-of-fact.",
		Example:     "Refactor logging module to improve reliability.",
	},
	"neutral": {
		Description: "Plain and unembellished.",
		Example:     "Fix typo in configuration loader.",
	},
	"friendly": {
		Description: "Casual and conversational.",
		Example:     "Hey! Just cleaned up the config parsing.",
	},
	"funny": {
		Description: "Lighthearted, with a joke where it fits.",
		Example:     "Fixed the bug that was hiding like a ninja in our config.",
	},
	"excited": {
		Description: "Enthusiastic and energetic.",
		Example:     "Amazing update! The config loader is now super fast!",
	},
	"sarcastic": {
		Description: "Dry and ironic.",
		Example:     "Oh look, another config bug. Shocking, right?",
	},
	"apologetic": {
		Description: "Owns up to the mistake being fixed.",
		Example:     "Sorry, my bad: this commit fixes the config error.",
	},
	"academic": {
		Description: "Detached and formal, like a paper abstract.",
		Example:     "This commit introduces a revised configuration parser based on robust principles.",
	},
}
