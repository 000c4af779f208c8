package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
)

const notSet = "not set"

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func formatProfile(prof profile.Profile, className string) string {
	var b strings.Builder
	b.WriteString("Your profile\n\n")
	fmt.Fprintf(&b, "Name: %s\n", orNotSet(prof.Name))
	fmt.Fprintf(&b, "Birth date: %s\n", orNotSet(prof.Contact.BirthDate))
	fmt.Fprintf(&b, "Phone: %s\n", orNotSet(prof.Contact.Phone))
	fmt.Fprintf(&b, "Email: %s\n", orNotSet(prof.Contact.Email))
	fmt.Fprintf(&b, "Additional info: %s\n\n", orNotSet(prof.Contact.AdditionalInfo))
	fmt.Fprintf(&b, "Status: %s\n", prof.OrgStatus)
	if prof.TeamRole != "" {
		fmt.Fprintf(&b, "Team role: %s\n", prof.TeamRole)
	} else {
		b.WriteString("Team role: not in a class\n")
	}
	if className != "" {
		fmt.Fprintf(&b, "Class: %s\n", className)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHomework(homework map[string]string) string {
	if len(homework) == 0 {
		return "No homework set"
	}
	subjects := make([]string, 0, len(homework))
	for subj := range homework {
		subjects = append(subjects, subj)
	}
	sort.Strings(subjects)

	lines := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		lines = append(lines, fmt.Sprintf("%s:\n%s", subj, homework[subj]))
	}
	return strings.Join(lines, "\n\n")
}

func formatSubjectList(cls classroom.Class) string {
	subjects := cls.Subjects()
	sort.Strings(subjects)

	lines := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		lines = append(lines, "- "+subj)
	}
	return strings.Join(lines, "\n")
}

func formatClassOverview(cls classroom.Class, teamRole string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Class: %s\n", cls.Name)
	fmt.Fprintf(&b, "Members: %d\n", len(cls.Members))
	fmt.Fprintf(&b, "Your role: %s", orNotSet(teamRole))
	return b.String()
}

func formatProfileList(profs []profile.Profile) string {
	lines := make([]string, 0, len(profs))
	for _, prof := range profs {
		lines = append(lines, fmt.Sprintf("- %s (%d)", prof.Name, prof.ID))
	}
	return strings.Join(lines, "\n")
}
