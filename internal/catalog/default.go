package catalog

import "github.com/roach88/carelog/internal/records"

var defaultIntents = []Definition{
	{
		Name:     "log_weight",
		Keywords: []string{"weight", "weigh", "kg", "kilograms"},
		Examples: []string{
			"log weight 65kg for week 12",
			"my weight is 70 kg today",
			"i weigh 68 kilograms",
		},
		Action:   ActionCreate,
		Category: records.Weight,
		Required: []string{SlotWeight},
		Optional: []string{SlotWeekNumber, SlotDate},
	},
	{
		Name:     "log_blood_pressure",
		Keywords: []string{"blood pressure", "bp", "systolic", "diastolic"},
		Examples: []string{
			"my blood pressure is 120/80",
			"log bp 118 over 76",
			"blood pressure reading 130/85 this morning",
		},
		Action:   ActionCreate,
		Category: records.BloodPressure,
		Required: []string{SlotSystolic, SlotDiastolic},
		Optional: []string{SlotDate, SlotTime},
	},
	{
		Name: "log_symptom",
		Keywords: []string{
			"symptom", "nausea", "headache", "cramps", "pain", "dizzy", "nauseous",
			"heartburn", "fatigue", "swelling",
		},
		Examples: []string{
			"i have a headache",
			"log symptom nausea",
			"feeling dizzy today",
			"severe back pain this morning",
		},
		Action:   ActionCreate,
		Category: records.Symptom,
		Required: []string{SlotSymptom},
		Optional: []string{SlotSeverity, SlotDate},
	},
	{
		Name:     "log_medicine",
		Keywords: []string{"medicine", "medication", "took", "vitamin", "pill", "pills", "dose"},
		Examples: []string{
			"took my prenatal vitamin",
			"log medicine iron 65mg",
			"i took 400 mg folic acid this morning",
		},
		Action:   ActionCreate,
		Category: records.Medicine,
		Required: []string{SlotMedicine},
		Optional: []string{SlotDosage, SlotFrequency, SlotTime},
	},
	{
		Name:     "log_discharge",
		Keywords: []string{"discharge"},
		Examples: []string{
			"log discharge white and creamy",
			"i noticed some clear watery discharge",
		},
		Action:   ActionCreate,
		Category: records.Discharge,
		Required: []string{SlotColor},
		Optional: []string{SlotConsistency, SlotAmount, SlotDate},
	},
	{
		Name:     "log_mood",
		Keywords: []string{"mood", "feel", "feeling", "emotional"},
		Examples: []string{
			"log my mood as happy",
			"i feel anxious today",
			"my mood is calm",
		},
		Action:   ActionCreate,
		Category: records.Mood,
		Required: []string{SlotMood},
		Optional: []string{SlotDate},
	},
	{
		Name:     "log_sleep",
		Keywords: []string{"sleep", "slept", "nap"},
		Examples: []string{
			"i slept 7 hours last night",
			"log sleep 8 hours good quality",
		},
		Action:   ActionCreate,
		Category: records.Sleep,
		Required: []string{SlotHours},
		Optional: []string{SlotQuality, SlotDate},
	},
	{
		Name:     "create_appointment",
		Keywords: []string{"appointment", "book", "make", "schedule"},
		Examples: []string{
			"make an appointment",
			"book an appointment with dr smith tomorrow at 3pm",
			"schedule a checkup appointment next monday at 10am at city clinic",
		},
		Action:   ActionCreate,
		Category: records.Appointment,
		Required: []string{SlotTitle, SlotDate, SlotTime, SlotLocation},
	},
	{
		Name:     "update_appointment",
		Keywords: []string{"appointment", "reschedule", "move", "change"},
		Examples: []string{
			"reschedule my checkup appointment to friday",
			"move the appointment with dr smith to next monday at 2pm",
			"change my dentist appointment to tomorrow",
		},
		Action:   ActionUpdate,
		Category: records.Appointment,
		Required: []string{SlotNewDate},
		Optional: []string{SlotNewTime, SlotTitle, SlotDate, SlotReference},
	},
	{
		Name:     "delete_appointment",
		Keywords: []string{"appointment", "delete", "remove", "cancel"},
		Examples: []string{
			"delete my checkup appointment",
			"cancel the appointment with dr smith",
			"remove tomorrow's appointment",
		},
		Action:   ActionDelete,
		Category: records.Appointment,
		Optional: []string{SlotTitle, SlotDate, SlotReference},
	},
	{
		Name:     "create_task",
		Keywords: []string{"task", "todo", "remind me", "reminder"},
		Examples: []string{
			"add a task to buy vitamins",
			"remind me to call the midwife tomorrow",
			"new todo pack hospital bag",
		},
		Action:   ActionCreate,
		Category: records.Task,
		Required: []string{SlotTask},
		Optional: []string{SlotDueDate},
	},
	{
		Name:     "complete_task",
		Keywords: []string{"complete", "completed", "done", "finish", "finished"},
		Examples: []string{
			"mark buy vitamins as done",
			"complete the pack hospital bag task",
			"i finished the task call the midwife",
		},
		Action:   ActionUpdate,
		Category: records.Task,
		Optional: []string{SlotTask, SlotReference},
	},
	{
		Name:     "delete_task",
		Keywords: []string{"task", "todo", "delete", "remove"},
		Examples: []string{
			"delete task buy vitamins",
			"remove the todo pack hospital bag",
		},
		Action:   ActionDelete,
		Category: records.Task,
		Optional: []string{SlotTask, SlotReference},
	},
	{
		Name:     "view_history",
		Keywords: []string{"history", "logs", "show", "view", "records"},
		Examples: []string{
			"show my weight history",
			"view blood pressure logs",
			"list my appointments",
		},
		Action:   ActionView,
		Optional: []string{SlotCategory, SlotDate},
	},
	{
		Name:     "view_analytics",
		Keywords: []string{"analytics", "trends", "chart", "charts", "stats", "statistics", "insights", "progress"},
		Examples: []string{
			"show my analytics",
			"how is my weight trending",
		},
		Action:   ActionAnalytics,
		Optional: []string{SlotCategory},
	},
	{
		Name:     "navigate",
		Keywords: []string{"go to", "open", "navigate", "take me to"},
		Examples: []string{
			"go to settings",
			"open my profile",
			"take me to the calendar",
		},
		Action:   ActionNavigate,
		Required: []string{SlotScreen},
	},
	{
		Name:     "logout",
		Keywords: []string{"logout", "log out", "sign out", "signout"},
		Examples: []string{
			"log me out",
			"sign out of my account",
		},
		Action: ActionLogout,
	},
	{
		Name:     "emergency",
		Keywords: []string{"emergency", "ambulance", "911", "help me"},
		Examples: []string{
			"this is an emergency",
			"call an ambulance",
		},
		Action: ActionEmergency,
	},
	{
		Name:     "undo",
		Keywords: []string{"undo", "revert", "take that back"},
		Examples: []string{
			"undo",
			"undo that",
			"undo the last action",
		},
		Action: ActionUndo,
	},
	{
		Name:     "cancel",
		Keywords: []string{"cancel", "never mind", "nevermind", "forget it"},
		Examples: []string{
			"cancel",
			"never mind",
			"forget it",
		},
		Action: ActionCancel,
	},
}

var defaultOverrides = []Override{
	{
		Intent: "emergency",
		Terms: []string{
			"emergency", "call 911", "ambulance", "heavy bleeding", "bleeding heavily",
			"can't breathe", "cannot breathe", "water broke", "water broken", "chest pain",
		},
	},
	{
		Intent: "view_analytics",
		Terms:  []string{"analytics", "trends", "trend", "statistics", "stats", "insights", "chart", "charts"},
	},
	{
		Intent:          "view_history",
		Terms:           []string{"history", "logs", "show", "show me", "view", "display", "list my", "list all"},
		RequireCategory: true,
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultIntents, defaultOverrides)
	if err != nil {
		panic("catalog: invalid default catalog: " + err.Error())
	}
	return c
}
