package template

var en = catalog{
	WelcomeSubject: "Welcome to KaziConnect",
	WelcomeBody:    "Hi %s, welcome to KaziConnect! Complete your profile to start receiving job matches.",

	ApplicationConfirmationSubject: "Application received",
	ApplicationConfirmationBody:    "Hi %s, your application for '%s' at %s has been received. We will notify you when the employer responds.",

	StatusUpdateSubject: "Application status update",
	StatusUpdateBody:    "Hi %s, your application for '%s' is now: %s.",

	DeadlineReminderSubject: "Application deadline approaching",
	DeadlineReminderBody:    "Reminder: applications for '%s' close on %s. Apply before the deadline!",
}
