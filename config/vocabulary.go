package config

// defaultSkillVocabulary is used when no skill_vocabulary is configured.
var defaultSkillVocabulary = []string{
	// Programming languages
	"python", "java", "javascript", "typescript", "go", "c++", "c#", "ruby", "php", "scala", "kotlin", "swift", "rust", "r",
	// Data and analytics
	"sql", "excel", "tableau", "power bi", "statistics", "data analysis", "machine learning", "pandas", "spark", "hadoop",
	// Web and cloud
	"html", "css", "react", "angular", "node.js", "django", "aws", "azure", "docker", "kubernetes", "linux", "git",
	// Business
	"project management", "salesforce", "sap", "accounting", "marketing", "customer service", "sales", "communication",
	// Trades and operations
	"forklift", "welding", "cdl", "nursing", "cooking", "inventory", "logistics",
}

// DefaultSkillVocabulary returns a copy of the built-in skill vocabulary.
func DefaultSkillVocabulary() []string {
	return append([]string(nil), defaultSkillVocabulary...)
}
