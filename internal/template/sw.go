package template

var sw = catalog{
	WelcomeSubject: "Karibu KaziConnect",
	WelcomeBody:    "Habari %s, karibu KaziConnect! Kamilisha wasifu wako ili uanze kupokea nafasi za kazi.",

	ApplicationConfirmationSubject: "Maombi yamepokelewa",
	ApplicationConfirmationBody:    "Habari %s, maombi yako ya '%s' katika %s yamepokelewa. Tutakujulisha mwajiri atakapojibu.",

	StatusUpdateSubject: "Hali ya maombi yako",
	StatusUpdateBody:    "Habari %s, maombi yako ya '%s' sasa ni: %s.",

	DeadlineReminderSubject: "Muda wa maombi unakaribia kwisha",
	DeadlineReminderBody:    "Kumbusho: maombi ya '%s' yanafungwa %s. Tuma maombi kabla ya muda kwisha!",
}
