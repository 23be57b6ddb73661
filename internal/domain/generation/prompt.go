package generation

import (
	"fmt"
	"strings"
)

// Prompt renders the instruction sent to a text model for profile
func Prompt(profile Profile, opts Options) string {
	days := opts.Days
	if days < 1 {
		days = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day meal plan", days)
	if profile.FamilySize > 1 {
		fmt.Fprintf(&b, " for a family of %d", profile.FamilySize)
	}
	b.WriteString(".\n")

	if profile.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", profile.Name)
	}
	if profile.Age > 0 {
		fmt.Fprintf(&b, "Age: %d\n", profile.Age)
	}
	if profile.DietType != "" {
		fmt.Fprintf(&b, "Diet: %s\n", profile.DietType)
	}
	if len(profile.Allergies) > 0 {
		fmt.Fprintf(&b, "Avoid (allergies): %s\n", strings.Join(profile.Allergies, ", "))
	}
	if profile.CaloriesGoal > 0 {
		fmt.Fprintf(&b, "Daily calorie target: %d kcal\n", profile.CaloriesGoal)
	}
	if profile.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", profile.Goal)
	}

	b.WriteString("For every day list breakfast, lunch, dinner and one snack with approximate calories. ")
	b.WriteString("Respond in Markdown with one heading per day.")
	return b.String()
}
