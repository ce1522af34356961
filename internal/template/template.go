// Package template builds the user-facing text for each notification type.
// Builders are pure functions of user-facing data plus a language code;
// an unknown language falls back to English.
package template

import "fmt"

// DefaultLanguage is used when the requested language has no catalog.
const DefaultLanguage = "en"

// catalog holds every subject/body pair for one language.
type catalog struct {
	WelcomeSubject string
	WelcomeBody    string

	ApplicationConfirmationSubject string
	ApplicationConfirmationBody    string

	StatusUpdateSubject string
	StatusUpdateBody    string

	DeadlineReminderSubject string
	DeadlineReminderBody    string
}

var catalogs = map[string]catalog{
	"en": en,
	"sw": sw,
}

func lookup(lang string) catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[DefaultLanguage]
}

// Welcome greets a newly registered user.
func Welcome(lang, name string) (subject, body string) {
	c := lookup(lang)
	return c.WelcomeSubject, fmt.Sprintf(c.WelcomeBody, name)
}

// ApplicationConfirmation acknowledges a submitted job application.
func ApplicationConfirmation(lang, name, jobTitle, company string) (subject, body string) {
	c := lookup(lang)
	return c.ApplicationConfirmationSubject, fmt.Sprintf(c.ApplicationConfirmationBody, name, jobTitle, company)
}

// StatusUpdate reports a change in an application's status.
func StatusUpdate(lang, name, jobTitle, status string) (subject, body string) {
	c := lookup(lang)
	return c.StatusUpdateSubject, fmt.Sprintf(c.StatusUpdateBody, name, jobTitle, status)
}

// DeadlineReminder nudges a user about a closing application window.
func DeadlineReminder(lang, jobTitle, deadline string) (subject, body string) {
	c := lookup(lang)
	return c.DeadlineReminderSubject, fmt.Sprintf(c.DeadlineReminderBody, jobTitle, deadline)
}
