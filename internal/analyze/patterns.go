package analyze

import "regexp"

// activityPatterns match shell prompts and commonly launched commands.
// A line matching any pattern counts once toward the activity score.
var activityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\$\s`),    // shell prompt
	regexp.MustCompile(`^>\s`),     // continuation prompt
	regexp.MustCompile(`^\[\d+\]`), // job control
	regexp.MustCompile(`^npm\s`),
	regexp.MustCompile(`^yarn\s`),
	regexp.MustCompile(`^pnpm\s`),
	regexp.MustCompile(`^git\s`),
	regexp.MustCompile(`^docker\s`),
	regexp.MustCompile(`^kubectl\s`),
	regexp.MustCompile(`^python\s`),
	regexp.MustCompile(`^node\s`),
	regexp.MustCompile(`^ruby\s`),
	regexp.MustCompile(`^make\s`),
	regexp.MustCompile(`^cargo\s`),
	regexp.MustCompile(`^go\s`),
}
